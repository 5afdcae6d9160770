package parser

import "strconv"

func parseInt(lexeme string) (int64, bool) {
	n, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseFloat(lexeme string) (float64, bool) {
	f, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
