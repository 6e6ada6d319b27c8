package leave

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"

	ModeAtomic   = "atomic"
	ModeFallback = "fallback"

	UnitDays  = "days"
	UnitHours = "hours"

	OpSubmit  = "submit"
	OpApprove = "approve"
	OpReject  = "reject"
	OpCancel  = "cancel"
	OpGrant   = "grant"
	OpAccrual = "accrual"

	// HoursPerDay converts day amounts for hour-denominated categories.
	HoursPerDay = 8
)

type Category string

const (
	CategoryAnnual       Category = "annual"
	CategorySick         Category = "sick"
	CategorySubstitute   Category = "substitute"
	CategoryCompensatory Category = "compensatory"
)

var Categories = []Category{CategoryAnnual, CategorySick, CategorySubstitute, CategoryCompensatory}

// transitions lists the legal status changes. Anything else is already processed.
var transitions = map[string][]string{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusCancelled},
}
