package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"monitor-reliability/pkg/models"
)

const hitDaysQueryRe = `SELECT DISTINCT DATE\(al\.ReceivedAt\) AS hit_day FROM AlertLog al WHERE al\.Monitor = \?`

func utc(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestSource_HitDates(t *testing.T) {
	window := models.DateRange{Start: utc(2025, 8, 19, 0), End: utc(2026, 1, 7, 0)}

	tests := []struct {
		name    string
		rows    func() *sqlmock.Rows
		want    []time.Time
		wantErr bool
	}{
		{
			name: "days normalised to UTC midnight",
			rows: func() *sqlmock.Rows {
				return sqlmock.NewRows([]string{"hit_day"}).
					AddRow(utc(2025, 8, 19, 0)).
					AddRow(utc(2025, 9, 30, 14)).
					AddRow(utc(2026, 1, 6, 0))
			},
			want: []time.Time{utc(2025, 8, 19, 0), utc(2025, 9, 30, 0), utc(2026, 1, 6, 0)},
		},
		{
			name: "no rows",
			rows: func() *sqlmock.Rows { return sqlmock.NewRows([]string{"hit_day"}) },
			want: nil,
		},
		{
			name: "row does not scan into a date",
			rows: func() *sqlmock.Rows {
				return sqlmock.NewRows([]string{"hit_day"}).AddRow("not-a-date")
			},
			wantErr: true,
		},
		{
			name: "error while iterating",
			rows: func() *sqlmock.Rows {
				return sqlmock.NewRows([]string{"hit_day"}).
					AddRow(utc(2025, 8, 19, 0)).
					AddRow(utc(2025, 8, 20, 0)).
					RowError(1, errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock: %v", err)
			}
			defer db.Close()

			// monitor, then [start ; end + 1 day)
			mock.ExpectQuery(hitDaysQueryRe).
				WithArgs("power-platform", "2025-08-19 00:00:00", "2026-01-08 00:00:00").
				WillReturnRows(tt.rows())

			s := &Source{DB: db, Table: "AlertLog", Monitor: "power-platform"}
			got, err := s.HitDates(context.Background(), window)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got days %v", got)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(got) != len(tt.want) {
					t.Fatalf("got %d days, want %d: %v", len(got), len(tt.want), got)
				}
				for i := range tt.want {
					if !got[i].Equal(tt.want[i]) || got[i].Location() != time.UTC {
						t.Fatalf("day %d: got %v, want %v", i, got[i], tt.want[i])
					}
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestSource_HitDatesQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(hitDaysQueryRe).WillReturnError(errors.New("table missing"))

	s := &Source{DB: db, Table: "AlertLog", Monitor: "m"}
	r := models.DateRange{Start: utc(2025, 1, 1, 0), End: utc(2025, 1, 31, 0)}
	if _, err := s.HitDates(context.Background(), r); err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
