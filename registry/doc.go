// Copyright 2025 Poiesic Systems
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


// Package registry keeps one in-memory cache of catalog entities per kind
// and resolves names to entities, creating them remotely when missing.
//
// A Registry is shared by every worker in a run. Workers call Bind with their
// own catalog client to get a Resolver; the caches behind all resolvers are
// the same. Each cache is guarded by its own lock and is only reachable
// through Resolve, Lookup and Preload.
//
// Preload must succeed before any document is processed: resolving against
// an empty snapshot would create duplicates of everything already in the
// catalog.
package registry
