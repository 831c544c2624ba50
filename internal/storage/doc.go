/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage owns everything on disk for a book project: the
// human-readable book.json manifest with transactional saves and timestamped
// backups, the spread/item mutation helpers the editor commits through, an
// embedded SQLite index for full-text search over textbox copy, autosave
// snapshots for crash recovery, per-user view preferences, and schema
// validation for imported manifests.
package storage
