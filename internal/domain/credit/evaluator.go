// Package credit holds the eligibility evaluator: a pure function of a
// customer's financial snapshot and loan history. It performs no I/O and
// reads no clocks; the evaluation date is an explicit input so results are
// reproducible.
package credit

import (
	"math"
	"time"
)

type Money = float64

const (
	// Score band boundaries for interest-rate correction.
	BandNoCorrection = 50
	BandFloorTwelve  = 30
	BandFloorSixteen = 10

	FloorRateMid = 12.0
	FloorRateLow = 16.0

	// Affordability cap: total EMIs must stay within this share of salary.
	emiSalaryCap = 0.5

	paymentHistoryWeight = 30.0
	loanCountWeight      = 20.0
	activityWeight       = 20.0
	volumeWeight         = 15.0
	baseScore            = 25.0

	perLoanPoints = 5.0
)

type Profile struct {
	CustomerID    int64
	MonthlySalary Money
	ApprovedLimit Money
}

type LoanRecord struct {
	Principal        Money
	Tenure           int
	InterestRate     float64
	MonthlyRepayment Money
	EMIsPaidOnTime   int
	StartDate        time.Time
	EndDate          time.Time
}

type Proposal struct {
	Amount       Money
	Tenure       int
	InterestRate float64
}

type Result struct {
	CreditScore           int
	Approved              bool
	CorrectedInterestRate float64
	MonthlyInstallment    Money
}

// Active reports whether the loan still has repayments outstanding as of
// the given date.
func (r LoanRecord) Active(asOf time.Time) bool {
	return !r.EndDate.Before(asOf)
}

// Evaluate scores the proposal against the customer's history and applies the
// rate-correction and affordability policies. It always returns a fully
// populated Result; rejection is a normal outcome, not an error.
func Evaluate(profile Profile, history []LoanRecord, proposal Proposal, asOf time.Time) Result {
	result := Result{CorrectedInterestRate: proposal.InterestRate}

	currentDebt := Money(0)
	currentEMIs := Money(0)
	for _, rec := range history {
		if rec.Active(asOf) {
			currentDebt += rec.Principal
			currentEMIs += rec.MonthlyRepayment
		}
	}

	// Hard rejection: the customer is already over their approved limit.
	if currentDebt > profile.ApprovedLimit {
		return result
	}

	score := Score(profile, history, asOf)
	result.CreditScore = score

	switch {
	case score >= BandNoCorrection:
		result.Approved = true
	case score >= BandFloorTwelve:
		result.Approved = true
		result.CorrectedInterestRate = math.Max(proposal.InterestRate, FloorRateMid)
	case score >= BandFloorSixteen:
		result.Approved = true
		result.CorrectedInterestRate = math.Max(proposal.InterestRate, FloorRateLow)
	default:
		return result
	}

	installment := MonthlyInstallment(proposal.Amount, result.CorrectedInterestRate, proposal.Tenure)

	if currentEMIs+installment > profile.MonthlySalary*emiSalaryCap {
		result.Approved = false
		result.CorrectedInterestRate = proposal.InterestRate
		return result
	}

	result.MonthlyInstallment = installment
	return result
}

// Score computes the 0-100 credit score. The hard-rejection sentinel 0 is
// returned when active debt exceeds the approved limit.
func Score(profile Profile, history []LoanRecord, asOf time.Time) int {
	currentDebt := Money(0)
	for _, rec := range history {
		if rec.Active(asOf) {
			currentDebt += rec.Principal
		}
	}
	if currentDebt > profile.ApprovedLimit {
		return 0
	}

	var paidOnTime, totalEMIs int
	var totalPrincipal Money
	loansThisYear := 0
	for _, rec := range history {
		paidOnTime += rec.EMIsPaidOnTime
		totalEMIs += rec.Tenure
		totalPrincipal += rec.Principal
		if rec.StartDate.Year() == asOf.Year() {
			loansThisYear++
		}
	}

	historyComponent := 0.0
	if totalEMIs > 0 {
		historyComponent = float64(paidOnTime) / float64(totalEMIs) * paymentHistoryWeight
	}

	countComponent := math.Min(float64(len(history))*perLoanPoints, loanCountWeight)

	activityComponent := math.Min(float64(loansThisYear)*perLoanPoints, activityWeight)

	volumeComponent := 0.0
	if profile.ApprovedLimit > 0 && totalPrincipal <= profile.ApprovedLimit {
		volumeComponent = math.Min(totalPrincipal/profile.ApprovedLimit*volumeWeight, volumeWeight)
	}

	score := math.Round(baseScore + historyComponent + countComponent + activityComponent + volumeComponent)
	return int(math.Min(math.Max(score, 0), 100))
}

// MonthlyInstallment computes the reducing-balance EMI for the given annual
// percentage rate over tenure months, rounded to two decimals.
func MonthlyInstallment(amount Money, annualRate float64, tenure int) Money {
	if tenure <= 0 {
		return 0
	}

	monthlyRate := annualRate / 100 / 12
	if monthlyRate == 0 {
		return roundTo(amount/float64(tenure), 2)
	}

	growth := math.Pow(1+monthlyRate, float64(tenure))
	return roundTo(amount*monthlyRate*growth/(growth-1), 2)
}

func roundTo(n float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(n*pow) / pow
}
