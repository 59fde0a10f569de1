package lotuscalc

import (
	"math"
	"strconv"
	"strings"
)

// financialFunctions returns the annuity, cash-flow, and depreciation
// builtins. Arguments here are strict: values that do not parse as numbers
// make the call fail with #ERR! instead of silently counting as zero.
func financialFunctions() map[string]Function {
	return map[string]Function{
		"PMT":  finPmt,
		"PV":   finPv,
		"FV":   finFv,
		"NPV":  finNpv,
		"IRR":  finIrr,
		"RATE": finRate,
		"NPER": finNper,

		"CTERM": finCterm,
		"TERM":  finTerm,

		"SLN": finSln,
		"SYD": finSyd,
		"DDB": finDdb,
		"DB":  finDb,

		"IPMT": finIpmt,
		"PPMT": finPpmt,
	}
}

// finArg reads a required strict-float argument.
func finArg(args []Value, i int) (float64, bool) {
	if i >= len(args) {
		return 0, false
	}
	return lookupFloat(args[i])
}

// finOptional reads a trailing argument that defaults when absent or falsy.
func finOptional(args []Value, i int, fallback float64) (float64, bool) {
	if i >= len(args) || !truthy(args[i]) {
		return fallback, true
	}
	return lookupFloat(args[i])
}

// finPmt returns the periodic payment that amortizes a present value to a
// future value: PMT(rate, nper, pv, fv). Payments against a positive
// balance come back negative.
func finPmt(_ *CallContext, args []Value) Value {
	r, rok := finArg(args, 0)
	n, nok := finArg(args, 1)
	pv, pok := finArg(args, 2)
	fv, fok := finOptional(args, 3, 0)
	if !rok || !nok || !pok || !fok {
		return NewError(ErrorErr)
	}

	if r == 0 {
		return Number(-(pv + fv) / n)
	}
	growth := math.Pow(1+r, n)
	return Number(-(pv*growth + fv) * r / (growth - 1))
}

// finPv returns the present value of an annuity: PV(rate, nper, pmt, fv).
func finPv(_ *CallContext, args []Value) Value {
	r, rok := finArg(args, 0)
	n, nok := finArg(args, 1)
	pmt, pok := finArg(args, 2)
	fv, fok := finOptional(args, 3, 0)
	if !rok || !nok || !pok || !fok {
		return NewError(ErrorErr)
	}

	if r == 0 {
		return Number(-(pmt*n + fv))
	}
	discount := math.Pow(1+r, -n)
	return Number(-(pmt*(1-discount)/r + fv*discount))
}

// finFv returns the future value of an annuity: FV(rate, nper, pmt, pv).
func finFv(_ *CallContext, args []Value) Value {
	r, rok := finArg(args, 0)
	n, nok := finArg(args, 1)
	pmt, pok := finArg(args, 2)
	pv, vok := finOptional(args, 3, 0)
	if !rok || !nok || !pok || !vok {
		return NewError(ErrorErr)
	}

	if r == 0 {
		return Number(-(pmt*n + pv))
	}
	growth := math.Pow(1+r, n)
	return Number(-(pmt*(growth-1)/r + pv*growth))
}

// finNpv discounts a series of cash flows starting one period out. Flows
// that are not numeric keep their position but contribute nothing.
func finNpv(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	r, ok := lookupFloat(args[0])
	if !ok {
		return NewError(ErrorErr)
	}

	npv := 0.0
	for i, v := range flatten(args[1:]) {
		if cf, ok := lookupFloat(v); ok {
			npv += cf / math.Pow(1+r, float64(i+1))
		}
	}
	return Number(npv)
}

// finIrr finds the rate at which the cash flows' net present value is zero,
// counting the first flow at time zero: IRR(values, guess). Newton-Raphson,
// up to 100 rounds.
func finIrr(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}

	var flows []float64
	for _, v := range flatten(args[0:1]) {
		switch v.Kind() {
		case KindNumber:
			flows = append(flows, v.Num())
		case KindBool:
			if v.Bool() {
				flows = append(flows, 1)
			} else {
				flows = append(flows, 0)
			}
		case KindText:
			if !digitish(v.Str()) {
				continue
			}
			n, err := strconv.ParseFloat(v.Str(), 64)
			if err != nil {
				return NewError(ErrorErr)
			}
			flows = append(flows, n)
		}
	}
	if len(flows) == 0 {
		return NewError(ErrorErr)
	}

	rate := 0.1
	if len(args) > 1 && truthy(args[1]) {
		g, ok := lookupFloat(args[1])
		if !ok {
			return NewError(ErrorErr)
		}
		rate = g
	}

	for iter := 0; iter < 100; iter++ {
		npv := 0.0
		deriv := 0.0
		for i, cf := range flows {
			npv += cf / math.Pow(1+rate, float64(i))
			deriv += -float64(i) * cf / math.Pow(1+rate, float64(i+1))
		}
		if math.Abs(deriv) < 1e-10 {
			break
		}
		next := rate - npv/deriv
		if math.Abs(next-rate) < 1e-10 {
			return Number(next)
		}
		rate = next
	}
	return Number(rate)
}

// digitish reports whether text is made of digits once periods and minus
// signs are ignored, the screen the IRR flow filter applies before parsing.
func digitish(s string) bool {
	stripped := strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), "-", "")
	if stripped == "" {
		return false
	}
	for _, c := range stripped {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// finRate solves for the per-period interest rate of an annuity by
// Newton-Raphson: RATE(nper, pmt, pv, fv, guess).
func finRate(_ *CallContext, args []Value) Value {
	n, nok := finArg(args, 0)
	pmt, pok := finArg(args, 1)
	pv, vok := finArg(args, 2)
	fv, fok := finOptional(args, 3, 0)
	rate, gok := finOptional(args, 4, 0.1)
	if !nok || !pok || !vok || !fok || !gok {
		return NewError(ErrorErr)
	}

	for iter := 0; iter < 100; iter++ {
		var y, dy float64
		if rate == 0 {
			y = pv + pmt*n + fv
			dy = 0
		} else {
			r1 := math.Pow(1+rate, n)
			y = pv*r1 + pmt*(r1-1)/rate + fv
			dy = pv*n*math.Pow(1+rate, n-1) +
				pmt*((n*math.Pow(1+rate, n-1)*rate-(r1-1))/(rate*rate))
		}
		if math.Abs(dy) < 1e-10 {
			break
		}
		next := rate - y/dy
		if math.Abs(next-rate) < 1e-10 {
			return Number(next)
		}
		rate = next
	}
	return Number(rate)
}

// finNper returns how many periods an annuity runs: NPER(rate, pmt, pv, fv).
func finNper(_ *CallContext, args []Value) Value {
	r, rok := finArg(args, 0)
	pmt, pok := finArg(args, 1)
	pv, vok := finArg(args, 2)
	fv, fok := finOptional(args, 3, 0)
	if !rok || !pok || !vok || !fok {
		return NewError(ErrorErr)
	}

	if r == 0 {
		if pmt == 0 {
			return NewError(ErrorErr)
		}
		return Number(-(pv + fv) / pmt)
	}

	denom := pmt + pv*r
	if denom == 0 {
		return NewError(ErrorErr)
	}
	ratio := (pmt - fv*r) / denom
	if ratio <= 0 || 1+r <= 0 {
		return NewError(ErrorErr)
	}
	return Number(math.Log(ratio) / math.Log(1+r))
}

// finCterm is the number of compounding periods for a lump sum to grow from
// a present to a future value: CTERM(rate, fv, pv).
func finCterm(_ *CallContext, args []Value) Value {
	r, rok := finArg(args, 0)
	fv, fok := finArg(args, 1)
	pv, pok := finArg(args, 2)
	if !rok || !fok || !pok {
		return NewError(ErrorErr)
	}
	if r <= 0 || pv <= 0 || fv <= 0 {
		return NewError(ErrorErr)
	}
	return Number(math.Log(fv/pv) / math.Log(1+r))
}

// finTerm is the number of payments needed to reach a future value:
// TERM(pmt, rate, fv).
func finTerm(_ *CallContext, args []Value) Value {
	pmt, pok := finArg(args, 0)
	r, rok := finArg(args, 1)
	fv, fok := finArg(args, 2)
	if !pok || !rok || !fok {
		return NewError(ErrorErr)
	}

	if r == 0 {
		if pmt == 0 {
			return NewError(ErrorErr)
		}
		return Number(fv / pmt)
	}
	if pmt == 0 {
		return NewError(ErrorErr)
	}
	ratio := 1 + fv*r/pmt
	if ratio <= 0 || 1+r <= 0 {
		return NewError(ErrorErr)
	}
	return Number(math.Log(ratio) / math.Log(1+r))
}

func finSln(_ *CallContext, args []Value) Value {
	c, cok := finArg(args, 0)
	s, sok := finArg(args, 1)
	n, nok := finArg(args, 2)
	if !cok || !sok || !nok {
		return NewError(ErrorErr)
	}
	if n == 0 {
		return NewError(ErrorDivZero)
	}
	return Number((c - s) / n)
}

func finSyd(_ *CallContext, args []Value) Value {
	c, cok := finArg(args, 0)
	s, sok := finArg(args, 1)
	if !cok || !sok || len(args) < 4 {
		return NewError(ErrorErr)
	}
	n, nok := strictInt(args[2])
	per, pok := strictInt(args[3])
	if !nok || !pok {
		return NewError(ErrorErr)
	}
	if n <= 0 || per <= 0 || per > n {
		return NewError(ErrorErr)
	}
	sumYears := float64(n) * float64(n+1) / 2
	return Number((c - s) * float64(n-per+1) / sumYears)
}

// finDdb walks the declining book value period by period:
// DDB(cost, salvage, life, period, factor). Depreciation never drives the
// book value below salvage.
func finDdb(_ *CallContext, args []Value) Value {
	c, cok := finArg(args, 0)
	s, sok := finArg(args, 1)
	n, nok := finArg(args, 2)
	if !cok || !sok || !nok || len(args) < 4 {
		return NewError(ErrorErr)
	}
	per, pok := strictInt(args[3])
	if !pok {
		return NewError(ErrorErr)
	}
	f, fok := finOptional(args, 4, 2)
	if !fok {
		return NewError(ErrorErr)
	}
	if n <= 0 || per <= 0 {
		return NewError(ErrorErr)
	}

	rate := f / n
	book := c
	for i := 0; i < per-1; i++ {
		book -= book * rate
		if book < s {
			book = s
			break
		}
	}

	dep := book * rate
	if book-dep < s {
		dep = book - s
	}
	if dep < 0 {
		dep = 0
	}
	return Number(dep)
}

// finDb applies the fixed-declining-balance method with the rate rounded
// to three places: DB(cost, salvage, life, period, month). Month shortens
// the first and last years and defaults to twelve.
func finDb(_ *CallContext, args []Value) Value {
	c, cok := finArg(args, 0)
	s, sok := finArg(args, 1)
	n, nok := finArg(args, 2)
	if !cok || !sok || !nok || len(args) < 4 {
		return NewError(ErrorErr)
	}
	per, pok := strictInt(args[3])
	if !pok {
		return NewError(ErrorErr)
	}
	m, mok := finOptional(args, 4, 12)
	if !mok {
		return NewError(ErrorErr)
	}
	month := int(m)
	if c <= 0 || s < 0 || n <= 0 || per <= 0 || month < 1 || month > 12 || float64(per) > n+1 {
		return NewError(ErrorErr)
	}

	rate := 1 - math.Pow(s/c, 1/n)
	rate = math.Round(rate*1000) / 1000

	dep := c * rate * float64(month) / 12
	if per == 1 {
		return Number(dep)
	}
	book := c - dep
	for i := 2; i < per; i++ {
		book -= book * rate
	}
	if float64(per) > n {
		return Number(book * rate * float64(12-month) / 12)
	}
	return Number(book * rate)
}

// annuityInterest is the interest due in one period, shared by IPMT and
// PPMT.
func annuityInterest(r float64, per, n int, pv float64) float64 {
	var pmt, remaining float64
	if r == 0 {
		pmt = pv / float64(n)
		remaining = pv - float64(per-1)*pmt
	} else {
		growth := math.Pow(1+r, float64(n))
		pmt = pv * (r * growth) / (growth - 1)
		partial := math.Pow(1+r, float64(per-1))
		remaining = pv*partial - pmt*(partial-1)/r
	}
	return remaining * r
}

func finIpmt(_ *CallContext, args []Value) Value {
	r, rok := finArg(args, 0)
	if !rok || len(args) < 4 {
		return NewError(ErrorErr)
	}
	per, pok := strictInt(args[1])
	n, nok := strictInt(args[2])
	pv, vok := finArg(args, 3)
	if !pok || !nok || !vok {
		return NewError(ErrorErr)
	}
	if per < 1 || per > n {
		return NewError(ErrorErr)
	}
	return Number(annuityInterest(r, per, n, pv))
}

func finPpmt(_ *CallContext, args []Value) Value {
	r, rok := finArg(args, 0)
	if !rok || len(args) < 4 {
		return NewError(ErrorErr)
	}
	per, pok := strictInt(args[1])
	n, nok := strictInt(args[2])
	pv, vok := finArg(args, 3)
	if !pok || !nok || !vok {
		return NewError(ErrorErr)
	}
	if per < 1 || per > n {
		return NewError(ErrorErr)
	}

	if r == 0 {
		return Number(pv / float64(n))
	}
	growth := math.Pow(1+r, float64(n))
	pmt := pv * (r * growth) / (growth - 1)
	return Number(pmt - annuityInterest(r, per, n, pv))
}
