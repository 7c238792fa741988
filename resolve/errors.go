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

package resolve

import "errors"

// ErrNotFound mirrors util/resolve's sentinel of the same name: a
// package or version could not be located.
var ErrNotFound = errors.New("resolve: not found")

// ErrUnsatisfiable is returned when no available version satisfies a
// dependency's constraint (spec.md §7 "Resolution failure").
var ErrUnsatisfiable = errors.New("resolve: no version satisfies constraint")
