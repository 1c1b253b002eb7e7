package mysql

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// FormatDSN builds a driver DSN from the six connection parameters the
// pipeline is configured with. parseTime is always enabled so DATE columns
// scan as time.Time, and the charset travels as a connection parameter the
// way the server expects it.
func FormatDSN(host string, port int, user, password, database, charset, collation string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", host, port)
	cfg.DBName = database
	cfg.ParseTime = true
	if collation != "" {
		cfg.Collation = collation
	}
	if charset != "" {
		cfg.Params = map[string]string{"charset": charset}
	}
	return cfg.FormatDSN()
}
