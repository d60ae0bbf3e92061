package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"monitor-reliability/pkg/models"

	_ "github.com/go-sql-driver/mysql"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Open DSN mariadb:// ou mysql:// → format MySQL driver
func Open(dsn string) (*sql.DB, string, error) {
	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, mysqlDSN, nil
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("dsn incomplete (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// Source reads alert-received events from a table shaped like
//
//	CREATE TABLE AlertLog (Monitor VARCHAR(128), ReceivedAt DATETIME, ...)
//
// and reports the distinct calendar days on which Monitor fired.
type Source struct {
	DB      *sql.DB
	Table   string
	Monitor string
	Verbose bool
}

// HitDates returns the distinct days with at least one event in r.
// Bounds are [r.Start, r.End + 1 day) in UTC.
func (s *Source) HitDates(ctx context.Context, r models.DateRange) ([]time.Time, error) {
	q, err := hitDatesQuery(s.Table)
	if err != nil {
		return nil, err
	}

	const layout = "2006-01-02 15:04:05"
	from := models.Day(r.Start).Format(layout)
	to := models.Day(r.End).AddDate(0, 0, 1).Format(layout)

	if s.Verbose {
		log.Printf("[DEBUG] Boundaries UTC: monitor=%s range=[%s ; %s)", s.Monitor, from, to)
	}

	rows, err := s.DB.QueryContext(ctx, q, s.Monitor, from, to)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.Table, err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, models.Day(d))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if s.Verbose {
		log.Printf("[DEBUG] Days with alerts read=%d", len(out))
	}
	return out, nil
}

func hitDatesQuery(table string) (string, error) {
	if !tableNameRe.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return fmt.Sprintf(`
		SELECT DISTINCT DATE(al.ReceivedAt) AS hit_day
		FROM %s al
		WHERE al.Monitor = ?
		  AND al.ReceivedAt >= ? AND al.ReceivedAt < ?
		ORDER BY hit_day
	`, table), nil
}
