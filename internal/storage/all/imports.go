// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each concrete backend, which register
// their factories and DDL bootstrappers with the storage package.
//
// Importing this package makes the following storage kinds available at
// runtime:
//
//   - "mysql"    (peopleetl/internal/storage/mysql)
//   - "postgres" (peopleetl/internal/storage/postgres)
//   - "mssql"    (peopleetl/internal/storage/mssql)
//   - "sqlite"   (peopleetl/internal/storage/sqlite)
//
// The CLI blank-imports this package and then stays backend-agnostic: every
// read and write goes through the storage.Repository interface. A binary that
// needs only a subset of backends can import the individual backend packages
// instead.
package all

import (
	_ "peopleetl/internal/storage/mssql"
	_ "peopleetl/internal/storage/mysql"
	_ "peopleetl/internal/storage/postgres"
	_ "peopleetl/internal/storage/sqlite"
)
