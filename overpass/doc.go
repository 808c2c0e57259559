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


// Package overpass is a client for the Overpass API.
//
// The client does one request per call and reports failures as typed
// errors so callers can decide what to retry; IsRetryable classifies
// them. A shared rate limiter spaces requests out since public Overpass
// instances throttle aggressively.
package overpass
