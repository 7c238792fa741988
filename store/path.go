// Copyright 2023 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"fmt"
	"strings"
)

// WheelFilename renders the standard wheel filename for a distribution
// at a given version, grounded on models.py's Distribution.wheel_name:
// dots and dashes in the distribution name become underscores.
func WheelFilename(pythonName, pythonVersion string) string {
	name := strings.NewReplacer("-", "_", ".", "_").Replace(pythonName)
	return fmt.Sprintf("%s-%s-py3-none-any.whl", name, pythonVersion)
}

// ArchivePath computes the 4-level hash-prefix storage path for an
// archive, grounded on models.py's upload_to_archive:
// "distributions/{translator}/{b1}/{b2}/{b3}/{b4}/{wheel filename}",
// where b1..b4 are successive byte-pairs of the archive's hex SHA-256.
func ArchivePath(translator Translator, hashSHA256, pythonName, pythonVersion string) (string, error) {
	if len(hashSHA256) < 8 {
		return "", fmt.Errorf("store: hash %q too short for a 4-level prefix path", hashSHA256)
	}
	b1, b2, b3, b4 := hashSHA256[0:2], hashSHA256[2:4], hashSHA256[4:6], hashSHA256[6:8]
	filename := WheelFilename(pythonName, pythonVersion)
	return fmt.Sprintf("distributions/%s/%s/%s/%s/%s/%s", translator, b1, b2, b3, b4, filename), nil
}
