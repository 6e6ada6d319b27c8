package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hrportal/internal/domain/policy"
)

// Load implements policy.Loader over the local policy tables.
func (s *Store) Load(ctx context.Context) (policy.Set, error) {
	set := policy.Defaults()

	windows, err := s.listWindows(ctx)
	if err != nil {
		return policy.Set{}, err
	}
	set.Windows = windows

	if err := s.activePolicy(ctx, &set.OvertimeNight, &set.Accrual); err != nil {
		return policy.Set{}, err
	}

	holidays, err := s.listHolidays(ctx)
	if err != nil {
		return policy.Set{}, err
	}
	set.Holidays = holidays

	set.Source = policy.SourceStore
	set.LoadedAt = time.Now().UTC()
	return set, nil
}

func (s *Store) listWindows(ctx context.Context) ([]policy.Window, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, start_date, end_date, standard_weekly_hours
		FROM policy_windows
		ORDER BY start_date, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []policy.Window
	for rows.Next() {
		var w policy.Window
		var start, end string
		if err := rows.Scan(&w.ID, &w.Name, &start, &end, &w.StandardWeeklyHours); err != nil {
			return nil, err
		}
		if w.StartDate, err = time.Parse(dateLayout, start); err != nil {
			return nil, err
		}
		if w.EndDate, err = time.Parse(dateLayout, end); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) activePolicy(ctx context.Context, p *policy.OvertimeNight, a *policy.LeaveAccrual) error {
	var (
		nightStart, nightEnd, lunch, dinner, tierMinutes    sql.NullInt32
		nightRate, threshold, overtimeRate, dinnerThreshold sql.NullFloat64
		weekly, tierHours                                   sql.NullFloat64
		satBase, satOvertime, sunBase, sunOvertime          sql.NullFloat64
		baseHours, maxBalance                               sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT night_start_minute, night_end_minute, night_rate, overtime_threshold_hours, overtime_rate,
		       break_tier_hours, break_tier_minutes, lunch_minutes, dinner_minutes, dinner_threshold_hours,
		       standard_weekly_hours, saturday_base_rate, saturday_overtime_rate, sunday_base_rate,
		       sunday_overtime_rate, accrual_base_hours, accrual_max_balance_hours
		FROM work_policies
		WHERE active = 1
		ORDER BY updated_at DESC
		LIMIT 1
	`).Scan(&nightStart, &nightEnd, &nightRate, &threshold, &overtimeRate,
		&tierHours, &tierMinutes, &lunch, &dinner, &dinnerThreshold,
		&weekly, &satBase, &satOvertime, &sunBase,
		&sunOvertime, &baseHours, &maxBalance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	if nightStart.Valid && nightEnd.Valid {
		p.NightStartMinute = int(nightStart.Int32)
		p.NightEndMinute = int(nightEnd.Int32)
	}
	setFloat(&p.NightRate, nightRate)
	setFloat(&p.OvertimeThresholdHours, threshold)
	setFloat(&p.OvertimeRate, overtimeRate)
	if tierHours.Valid && tierMinutes.Valid {
		p.BreakTiers = []policy.BreakTier{{MinHours: tierHours.Float64, Minutes: int(tierMinutes.Int32)}}
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
	return nil
}

func (s *Store) listHolidays(ctx context.Context) (policy.Holidays, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT holiday_date, name FROM holidays ORDER BY holiday_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(policy.Holidays)
	for rows.Next() {
		var date, name string
		if err := rows.Scan(&date, &name); err != nil {
			return nil, err
		}
		out[date] = name
	}
	return out, rows.Err()
}

func setFloat(dst *float64, v sql.NullFloat64) {
	if v.Valid {
		*dst = v.Float64
	}
}
