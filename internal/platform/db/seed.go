package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrportal/internal/domain/policy"
)

// Seed writes an active work policy holding defaults when none exists, so
// the policy store has something to serve on a fresh database.
func Seed(ctx context.Context, pool *pgxpool.Pool, defaults policy.Set) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM work_policies WHERE active").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	p := defaults.OvertimeNight
	a := defaults.Accrual
	tier := p.Tiers()[0]
	_, err := pool.Exec(ctx, `
    INSERT INTO work_policies (
      id, active, night_start_minute, night_end_minute, night_rate, overtime_threshold_hours, overtime_rate,
      break_tier_hours, break_tier_minutes, lunch_minutes, dinner_minutes, dinner_threshold_hours,
      standard_weekly_hours, saturday_base_rate, saturday_overtime_rate, sunday_base_rate, sunday_overtime_rate,
      accrual_base_hours, accrual_max_balance_hours
    )
    VALUES ('default', true, $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,NULLIF($17, 0))
    ON CONFLICT (id) DO NOTHING
  `, p.NightStartMinute, p.NightEndMinute, p.NightRate, p.OvertimeThresholdHours, p.OvertimeRate,
		tier.MinHours, tier.Minutes, p.Lunch(), p.Dinner(), p.DinnerThreshold(),
		p.StandardWeeklyHours, a.Saturday.BaseRate, a.Saturday.OvertimeRate, a.SundayOrHoliday.BaseRate, a.SundayOrHoliday.OvertimeRate,
		a.Base(), a.MaxBalanceHours)
	return err
}
