package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/stockdash/internal/models"
)

func TestBuildPrompt_Deterministic(t *testing.T) {
	in := Inputs{Company: sampleCompany(), Value: sampleValueData()}
	for _, track := range models.Tracks() {
		t.Run(string(track), func(t *testing.T) {
			first, err := BuildPrompt(track, in)
			require.NoError(t, err)
			second, err := BuildPrompt(track, in)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestBuildValuePrompt(t *testing.T) {
	prompt, err := BuildPrompt(models.TrackValue, Inputs{Value: sampleValueData()})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "请作为一位专业的价值投资分析师，对贵州茅台(600519)进行深入的价值投资分析。\n\n当前市场信息：\n"))
	assert.Contains(t, prompt, "- 市盈率(PE)：28.1234\n")
	assert.Contains(t, prompt, "- 股息率：1.75%\n")
	assert.Contains(t, prompt, "- 当前股价：1688.5000元\n")
	assert.Contains(t, prompt, "- ROE：34.12%\n")
	// missing values keep their line with a zero placeholder
	assert.Contains(t, prompt, "- 应收账款周转率：0.0000次/年\n")
	assert.Contains(t, prompt, "- 经营现金流同比增长：0.00%\n")
	assert.Contains(t, prompt, "- 每股未分配利润：145.3000元\n请基于以上数据")
	for _, key := range []string{"investment_suggestion", "analysis", "price_analysis"} {
		assert.Contains(t, prompt, key)
	}
}

func TestBuildMastersPrompt_Placeholders(t *testing.T) {
	value := sampleValueData()
	value.Valuation.CirculatingRatio = nil
	value.PerShare.EBITPS = nil

	prompt, err := BuildPrompt(models.TrackMasters, Inputs{Company: sampleCompany(), Value: value})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "请分别以五位价值投资大咖的视角，分析贵州茅台(600519)这家公司。"))
	assert.Contains(t, prompt, "- 流通比例：-\n")
	assert.Contains(t, prompt, "- 每股息税前利润：-元\n")
	assert.Contains(t, prompt, "- 换手率：0.32%\n")
	assert.Contains(t, prompt, "- 注册资本：125620万元\n")
	assert.Contains(t, prompt, "- 员工人数：33302人\n")
	assert.Contains(t, prompt, "- 产权比率：0.2395\n")
	for _, key := range []string{"buffett_analysis", "graham_analysis", "lin_yuan_analysis", "li_daxiao_analysis", "duan_yongping_analysis"} {
		assert.Contains(t, prompt, key)
	}
}

func TestBuildTaoPrompt(t *testing.T) {
	prompt, err := BuildPrompt(models.TrackTao, Inputs{Company: sampleCompany()})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "请作为一位精通道德经的智者，运用道德经的智慧来分析贵州茅台(600519)这家公司。"))
	assert.Contains(t, prompt, "- 所属行业：白酒\n")
	assert.Contains(t, prompt, "- 经营范围：茅台酒系列产品的生产与销售\n")
	for _, key := range []string{"tao_philosophy", "business_ethics", "investment_advice"} {
		assert.Contains(t, prompt, key)
	}
}

func TestBuildPrompt_MissingInputs(t *testing.T) {
	_, err := BuildPrompt(models.TrackValue, Inputs{})
	assert.Error(t, err)
	_, err = BuildPrompt(models.TrackMasters, Inputs{Company: sampleCompany()})
	assert.Error(t, err)
	_, err = BuildPrompt(models.Track("unknown"), Inputs{})
	assert.Error(t, err)
}

func TestPercentFormatting(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want string
	}{
		{"fraction", f(0.1234), "12.34%"},
		{"one", f(1), "100.00%"},
		{"already percent", f(25.5), "25.50%"},
		{"negative fraction", f(-0.05), "-5.00%"},
		{"missing", nil, "0.00%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valuePercent(tt.in))
		})
	}

	assert.Equal(t, "0.0000", valueNumber(f(0.00001)))
	assert.Equal(t, "-", mastersNumber(nil))
	assert.Equal(t, "0.0000", mastersNumber(f(0)))
}
