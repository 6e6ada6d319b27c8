package policy

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hrportal/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Load(ctx context.Context) (Set, error) {
	set := Defaults()

	windows, err := s.ListWindows(ctx)
	if err != nil {
		return Set{}, err
	}
	set.Windows = windows

	overtimeNight, accrual, err := s.ActivePolicy(ctx)
	if err != nil {
		return Set{}, err
	}
	set.OvertimeNight = overtimeNight
	set.Accrual = accrual

	holidays, err := s.ListHolidays(ctx)
	if err != nil {
		return Set{}, err
	}
	set.Holidays = holidays

	set.Source = SourceStore
	set.LoadedAt = time.Now().UTC()
	return set, nil
}

func (s *Store) ListWindows(ctx context.Context) ([]Window, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, start_date, end_date, standard_weekly_hours
    FROM policy_windows
    ORDER BY start_date, id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Window
	for rows.Next() {
		var w Window
		if err := rows.Scan(&w.ID, &w.Name, &w.StartDate, &w.EndDate, &w.StandardWeeklyHours); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// ActivePolicy returns the most recent active policy row. Columns left NULL keep their defaults.
func (s *Store) ActivePolicy(ctx context.Context) (OvertimeNight, LeaveAccrual, error) {
	p := DefaultOvertimeNight()
	a := DefaultLeaveAccrual()

	var (
		nightStart, nightEnd, lunch, dinner, tierMinutes    sql.NullInt32
		nightRate, threshold, overtimeRate, dinnerThreshold sql.NullFloat64
		weekly, tierHours                                   sql.NullFloat64
		satBase, satOvertime, sunBase, sunOvertime          sql.NullFloat64
		baseHours, maxBalance                               sql.NullFloat64
	)
	err := s.DB.QueryRow(ctx, `
    SELECT night_start_minute, night_end_minute, night_rate, overtime_threshold_hours, overtime_rate,
           break_tier_hours, break_tier_minutes, lunch_minutes, dinner_minutes, dinner_threshold_hours,
           standard_weekly_hours, saturday_base_rate, saturday_overtime_rate, sunday_base_rate,
           sunday_overtime_rate, accrual_base_hours, accrual_max_balance_hours
    FROM work_policies
    WHERE active
    ORDER BY updated_at DESC
    LIMIT 1
  `).Scan(&nightStart, &nightEnd, &nightRate, &threshold, &overtimeRate,
		&tierHours, &tierMinutes, &lunch, &dinner, &dinnerThreshold,
		&weekly, &satBase, &satOvertime, &sunBase,
		&sunOvertime, &baseHours, &maxBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, a, nil
	}
	if err != nil {
		return OvertimeNight{}, LeaveAccrual{}, err
	}

	if nightStart.Valid && nightEnd.Valid {
		p.NightStartMinute = int(nightStart.Int32)
		p.NightEndMinute = int(nightEnd.Int32)
	}
	setFloat(&p.NightRate, nightRate)
	setFloat(&p.OvertimeThresholdHours, threshold)
	setFloat(&p.OvertimeRate, overtimeRate)
	if tierHours.Valid && tierMinutes.Valid {
		p.BreakTiers = []BreakTier{{MinHours: tierHours.Float64, Minutes: int(tierMinutes.Int32)}}
	}
	if lunch.Valid {
		p.LunchMinutes = int(lunch.Int32)
	}
	if dinner.Valid {
		p.DinnerMinutes = int(dinner.Int32)
	}
	setFloat(&p.DinnerThresholdHours, dinnerThreshold)
	setFloat(&p.StandardWeeklyHours, weekly)

	setFloat(&a.Saturday.BaseRate, satBase)
	setFloat(&a.Saturday.OvertimeRate, satOvertime)
	setFloat(&a.SundayOrHoliday.BaseRate, sunBase)
	setFloat(&a.SundayOrHoliday.OvertimeRate, sunOvertime)
	setFloat(&a.BaseHours, baseHours)
	setFloat(&a.MaxBalanceHours, maxBalance)
	return p, a, nil
}

func (s *Store) ListHolidays(ctx context.Context) (Holidays, error) {
	rows, err := s.DB.Query(ctx, `SELECT holiday_date, name FROM holidays ORDER BY holiday_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(Holidays)
	for rows.Next() {
		var date time.Time
		var name string
		if err := rows.Scan(&date, &name); err != nil {
			return nil, err
		}
		out[date.Format(dateLayout)] = name
	}
	return out, rows.Err()
}

func setFloat(dst *float64, v sql.NullFloat64) {
	if v.Valid {
		*dst = v.Float64
	}
}
