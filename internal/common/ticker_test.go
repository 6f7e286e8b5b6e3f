package common

import (
	"errors"
	"testing"
)

func TestResolveStockCode(t *testing.T) {
	tests := []struct {
		input      string
		wantTSCode string
		wantErr    error
	}{
		// Shanghai
		{"600000", "600000.SH", nil},
		{"601318", "601318.SH", nil},
		{"688981", "688981.SH", nil},

		// Shenzhen
		{"000001", "000001.SZ", nil},
		{"002594", "002594.SZ", nil},
		{"300750", "300750.SZ", nil},

		// Unsupported leading digits
		{"830799", "", ErrUnsupportedCode},
		{"430047", "", ErrUnsupportedCode},
		{"900901", "", ErrUnsupportedCode},
		{"100000", "", ErrUnsupportedCode},

		// Wrong length
		{"", "", ErrInvalidFormat},
		{"60000", "", ErrInvalidFormat},
		{"6000001", "", ErrInvalidFormat},
		{"600000.SH", "", ErrInvalidFormat},

		// Non-digits
		{"60000A", "", ErrInvalidFormat},
		{"6abcde", "", ErrInvalidFormat},
		{" 60000", "", ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ResolveStockCode(tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if result.TSCode() != "" {
					t.Errorf("TSCode() = %q, want empty on error", result.TSCode())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.TSCode() != tt.wantTSCode {
				t.Errorf("TSCode() = %q, want %q", result.TSCode(), tt.wantTSCode)
			}
			if result.Code != tt.input {
				t.Errorf("Code = %q, want %q", result.Code, tt.input)
			}
		})
	}
}

func TestResolveStockCode_AllLeadingDigits(t *testing.T) {
	want := map[byte]string{'0': "SZ", '3': "SZ", '6': "SH"}

	for d := byte('0'); d <= '9'; d++ {
		code := string([]byte{d, '0', '0', '0', '0', '1'})
		result, err := ResolveStockCode(code)

		exchange, supported := want[d]
		if !supported {
			if !errors.Is(err, ErrUnsupportedCode) {
				t.Errorf("%s: err = %v, want ErrUnsupportedCode", code, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", code, err)
			continue
		}
		if result.Exchange != exchange {
			t.Errorf("%s: Exchange = %q, want %q", code, result.Exchange, exchange)
		}
	}
}

func TestResolveStockCode_ErrorMessage(t *testing.T) {
	_, err := ResolveStockCode("12345")
	if got := ErrorMessage(err); got != "股票代码格式错误" {
		t.Errorf("ErrorMessage() = %q", got)
	}

	_, err = ResolveStockCode("900001")
	if got := ErrorMessage(err); got != "不支持的股票代码" {
		t.Errorf("ErrorMessage() = %q", got)
	}
}

func TestNormalizeStockCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"600000", "600000"},
		{"  600000  ", "600000"},
		{"600000.SH", "600000"},
		{"000001.sz", "000001"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeStockCode(tt.input); got != tt.want {
				t.Errorf("NormalizeStockCode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
