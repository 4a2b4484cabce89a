package cmd

import (
	"github.com/jmoiron/sqlx"

	"github.com/templui/passreset/internal/config"
	"github.com/templui/passreset/internal/db"
)

// openDB connects with DB_DRIVER / DB_CONNECTION from the environment or .env.
func openDB() (*sqlx.DB, string, error) {
	driver, connection := config.LoadDatabase()
	conn, err := db.Init(driver, connection)
	if err != nil {
		return nil, "", err
	}
	return conn, driver, nil
}
