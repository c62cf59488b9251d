// Copyright 2026 The asyncprawcore Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package requestor

// Version is the library version advertised in the User-Agent header.
const Version = "1.5.0"
