package lotuscalc

import "math"

// mathFunctions returns the arithmetic, logarithmic, and trigonometric
// builtins. Domain violations (negative square roots, logs of non-positive
// numbers) produce NaN, which the evaluator reports as #NUM!. Missing
// required arguments yield #ERR!.
func mathFunctions() map[string]Function {
	return map[string]Function{
		"SUM":     mathSum,
		"ABS":     mathAbs,
		"INT":     mathInt,
		"ROUND":   mathRound,
		"MOD":     mathMod,
		"SQRT":    mathSqrt,
		"POWER":   mathPower,
		"SIGN":    mathSign,
		"TRUNC":   mathTrunc,
		"CEILING": mathCeiling,
		"FLOOR":   mathFloor,
		"EVEN":    mathEven,
		"ODD":     mathOdd,
		"FACT":    mathFact,
		"GCD":     mathGCD,
		"LCM":     mathLCM,

		"EXP":   mathExp,
		"LN":    mathLn,
		"LOG":   mathLog,
		"LOG10": mathLog,

		"SIN":     mathSin,
		"COS":     mathCos,
		"TAN":     mathTan,
		"ASIN":    mathAsin,
		"ACOS":    mathAcos,
		"ATAN":    mathAtan,
		"ATAN2":   mathAtan2,
		"DEGREES": mathDegrees,
		"RADIANS": mathRadians,

		"PI":   mathPi,
		"RAND": mathRand,
	}
}

func mathSum(_ *CallContext, args []Value) Value {
	total := 0.0
	for _, v := range flatten(args) {
		if v.IsEmpty() || v.IsError() || v.IsArray() {
			continue
		}
		total += toNumber(v)
	}
	return Number(total)
}

func mathAbs(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Number(math.Abs(toNumber(args[0])))
}

// mathInt truncates toward negative infinity, so INT(-3.7) is -4.
func mathInt(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Number(math.Floor(toNumber(args[0])))
}

// mathRound rounds half to even at the requested number of decimals.
func mathRound(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	n := toNumber(args[0])
	d := toInt(argOr(args, 1, Number(0)))
	factor := math.Pow(10, float64(d))
	return Number(math.RoundToEven(n*factor) / factor)
}

// mathMod keeps the sign of the divisor. A zero divisor yields NaN.
func mathMod(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	n := toNumber(args[0])
	d := toNumber(args[1])
	if d == 0 {
		return Number(math.NaN())
	}
	return Number(flooredMod(n, d))
}

func mathSqrt(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	n := toNumber(args[0])
	if n < 0 {
		return Number(math.NaN())
	}
	return Number(math.Sqrt(n))
}

func mathPower(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	return Number(math.Pow(toNumber(args[0]), toNumber(args[1])))
}

func mathSign(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	n := toNumber(args[0])
	switch {
	case n > 0:
		return Number(1)
	case n < 0:
		return Number(-1)
	}
	return Number(0)
}

// mathTrunc truncates toward zero at the requested number of decimals.
func mathTrunc(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	n := toNumber(args[0])
	d := toInt(argOr(args, 1, Number(0)))
	factor := math.Pow(10, float64(d))
	return Number(math.Trunc(n*factor) / factor)
}

func mathCeiling(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Number(math.Ceil(toNumber(args[0])))
}

func mathFloor(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Number(math.Floor(toNumber(args[0])))
}

// mathEven rounds away from zero to the nearest even integer.
func mathEven(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	n := toNumber(args[0])
	e := math.Ceil(math.Abs(n)/2) * 2
	if n < 0 {
		e = -e
	}
	return Number(e)
}

// mathOdd rounds away from zero to the nearest odd integer. Zero rounds up
// to one.
func mathOdd(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	n := toNumber(args[0])
	o := math.Ceil((math.Abs(n)+1)/2)*2 - 1
	if n < 0 {
		o = -o
	}
	return Number(o)
}

func mathFact(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	n := toInt(args[0])
	if n < 0 {
		return Number(0)
	}
	result := 1.0
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return Number(result)
}

func mathGCD(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	return Number(float64(gcd(toInt(args[0]), toInt(args[1]))))
}

func mathLCM(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	a, b := toInt(args[0]), toInt(args[1])
	if a == 0 || b == 0 {
		return Number(0)
	}
	l := a / gcd(a, b) * b
	if l < 0 {
		l = -l
	}
	return Number(float64(l))
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func mathExp(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Number(math.Exp(toNumber(args[0])))
}

func mathLn(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	n := toNumber(args[0])
	if n <= 0 {
		return Number(math.NaN())
	}
	return Number(math.Log(n))
}

func mathLog(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	n := toNumber(args[0])
	if n <= 0 {
		return Number(math.NaN())
	}
	return Number(math.Log10(n))
}

func mathSin(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Number(math.Sin(toNumber(args[0])))
}

func mathCos(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Number(math.Cos(toNumber(args[0])))
}

func mathTan(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Number(math.Tan(toNumber(args[0])))
}

func mathAsin(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	n := toNumber(args[0])
	if n < -1 || n > 1 {
		return Number(math.NaN())
	}
	return Number(math.Asin(n))
}

func mathAcos(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	n := toNumber(args[0])
	if n < -1 || n > 1 {
		return Number(math.NaN())
	}
	return Number(math.Acos(n))
}

func mathAtan(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Number(math.Atan(toNumber(args[0])))
}

func mathAtan2(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	return Number(math.Atan2(toNumber(args[0]), toNumber(args[1])))
}

func mathDegrees(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Number(toNumber(args[0]) * 180 / math.Pi)
}

func mathRadians(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Number(toNumber(args[0]) * math.Pi / 180)
}

func mathPi(_ *CallContext, _ []Value) Value {
	return Number(math.Pi)
}

func mathRand(cc *CallContext, _ []Value) Value {
	return Number(cc.Rand.Float64())
}
