// Package common provides shared utilities across the application.
package common

import (
	"strings"
)

// Exchange suffixes used by the market-data provider (Tushare ts_code format).
const (
	ExchangeShanghai = "SH"
	ExchangeShenzhen = "SZ"
	ExchangeBeijing  = "BJ"
)

// StockCode is a bare 6-digit A-share code resolved to its exchange.
// Format of TSCode: CODE.EXCHANGE (e.g., "600000.SH")
type StockCode struct {
	// Code is the bare 6-digit code (e.g., "600000")
	Code string
	// Exchange is the exchange suffix (e.g., "SH")
	Exchange string
}

// TSCode returns the exchange-qualified identifier used by the provider.
func (s StockCode) TSCode() string {
	if s.Code == "" {
		return ""
	}
	return s.Code + "." + s.Exchange
}

// String returns the TSCode representation.
func (s StockCode) String() string {
	return s.TSCode()
}

// prefixToExchange maps the leading digit of a code to its exchange.
var prefixToExchange = map[byte]string{
	'6': ExchangeShanghai,
	'0': ExchangeShenzhen,
	'3': ExchangeShenzhen,
}

// ResolveStockCode maps a bare 6-character code to its exchange-qualified form.
//   - length other than 6, or any non-digit  -> InvalidFormat
//   - leading "6"                           -> Shanghai
//   - leading "0" or "3"                    -> Shenzhen
//   - any other leading digit               -> UnsupportedCode
//
// Every call site that talks to the market-data provider goes through here.
func ResolveStockCode(code string) (StockCode, error) {
	if !IsStockCodeFormat(code) {
		return StockCode{}, InvalidFormat("股票代码格式错误")
	}

	exchange, ok := prefixToExchange[code[0]]
	if !ok {
		return StockCode{}, UnsupportedCode("不支持的股票代码")
	}

	return StockCode{Code: code, Exchange: exchange}, nil
}

// IsStockCodeFormat reports whether code is exactly six ASCII digits.
func IsStockCodeFormat(code string) bool {
	if len(code) != 6 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// NormalizeStockCode trims whitespace and strips a trailing exchange suffix
// (e.g., "600000.sh" -> "600000") so user input can be resolved.
func NormalizeStockCode(input string) string {
	input = strings.TrimSpace(input)
	if idx := strings.Index(input, "."); idx > 0 {
		input = input[:idx]
	}
	return input
}
