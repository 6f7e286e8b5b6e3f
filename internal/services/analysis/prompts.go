package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ternarybob/stockdash/internal/models"
)

// Inputs is what a track renders its prompt from. The value track needs Value,
// the tao track needs Company and the masters track needs both.
type Inputs struct {
	Company *models.CompanyDetail
	Value   *models.ValueAnalysisData
}

// Groups lists the top-level input groups echoed back in an ErrorEnvelope.
func (in Inputs) Groups(track models.Track) []models.Group {
	var groups []models.Group
	switch track {
	case models.TrackValue:
		if in.Value != nil {
			groups = append(groups, in.Value.Groups()...)
		}
	case models.TrackTao:
		if in.Company != nil {
			groups = append(groups, in.Company.Groups()...)
		}
	case models.TrackMasters:
		if in.Company != nil {
			groups = append(groups, in.Company.Groups()...)
		}
		if in.Value != nil {
			groups = append(groups, in.Value.Groups()...)
		}
	}
	return groups
}

// BuildPrompt renders the prompt for track. Output depends only on the inputs.
func BuildPrompt(track models.Track, in Inputs) (string, error) {
	switch track {
	case models.TrackValue:
		if in.Value == nil {
			return "", fmt.Errorf("value prompt requires value analysis data")
		}
		return buildValuePrompt(in.Value), nil
	case models.TrackTao:
		if in.Company == nil {
			return "", fmt.Errorf("tao prompt requires company detail")
		}
		return buildTaoPrompt(&in.Company.BasicInfo), nil
	case models.TrackMasters:
		if in.Company == nil || in.Value == nil {
			return "", fmt.Errorf("masters prompt requires company detail and value analysis data")
		}
		return buildMastersPrompt(&in.Company.BasicInfo, in.Value), nil
	}
	return "", fmt.Errorf("unknown analysis track %q", track)
}

// Value track placeholders: missing and near-zero numbers print as zero.

func valueNumber(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.Abs(*v) < 0.0001 {
		return "0.0000"
	}
	return fmt.Sprintf("%.4f", *v)
}

// valuePercent treats |v| <= 1 as a fraction and anything larger as already in percent.
func valuePercent(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return "0.00%"
	}
	return percent(*v)
}

// Masters track placeholders: missing values print as "-".

func mastersNumber(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}

func mastersPercent(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return "-"
	}
	return percent(*v)
}

func percent(v float64) string {
	if math.Abs(v) <= 1 {
		v *= 100
	}
	return fmt.Sprintf("%.2f%%", v)
}

// profileNumber prints company profile figures, blank when the provider had none.
func profileNumber(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func profileCount(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

type promptWriter struct {
	b strings.Builder
}

func (w *promptWriter) line(format string, args ...interface{}) {
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *promptWriter) blank() {
	w.b.WriteByte('\n')
}

func (w *promptWriter) String() string {
	return w.b.String()
}

func buildValuePrompt(d *models.ValueAnalysisData) string {
	var w promptWriter
	w.line("请作为一位专业的价值投资分析师，对%s(%s)进行深入的价值投资分析。", d.StockInfo.Name, d.StockInfo.Code)
	w.blank()

	w.line("当前市场信息：")
	w.line("- 市盈率(PE)：%s", valueNumber(d.Valuation.PERatio))
	w.line("- 市净率(PB)：%s", valueNumber(d.Valuation.PBRatio))
	w.line("- 市销率(PS)：%s", valueNumber(d.Valuation.PSRatio))
	w.line("- 股息率：%s", valuePercent(d.Valuation.DividendYield))
	w.line("- 总市值(亿元)：%s", valueNumber(d.Valuation.TotalMarketValue))
	w.line("- 当前股价：%s元", valueNumber(d.StockInfo.CurrentPrice))
	w.blank()

	w.line("盈利能力指标：")
	w.line("- ROE：%s", valuePercent(d.Profitability.ROE))
	w.line("- 毛利率：%s", valuePercent(d.Profitability.GrossMargin))
	w.line("- 净利率：%s", valuePercent(d.Profitability.NetMargin))
	w.blank()

	w.line("成长能力指标：")
	w.line("- 净利润增长率：%s", valuePercent(d.Growth.NetProfitGrowth))
	w.line("- 扣非净利润增长率：%s", valuePercent(d.Growth.DeductedNetProfitGrowth))
	w.line("- 营收增长率：%s", valuePercent(d.Growth.RevenueGrowth))
	w.blank()

	w.line("运营能力指标：")
	w.line("- 总资产周转率：%s次/年", valueNumber(d.Operation.AssetTurnover))
	w.line("- 存货周转率：%s次/年", valueNumber(d.Operation.InventoryTurnover))
	w.line("- 应收账款周转率：%s次/年", valueNumber(d.Operation.ReceivablesTurnover))
	w.blank()

	w.line("偿债能力指标：")
	w.line("- 流动比率：%s", valueNumber(d.Solvency.CurrentRatio))
	w.line("- 速动比率：%s", valueNumber(d.Solvency.QuickRatio))
	w.line("- 资产负债率：%s", valuePercent(d.Solvency.DebtToAssets))
	w.blank()

	w.line("现金流指标：")
	w.line("- 经营现金流/营收比：%s", valuePercent(d.CashFlow.OCFToRevenue))
	w.line("- 经营现金流同比增长：%s", valuePercent(d.CashFlow.OCFGrowth))
	w.blank()

	w.line("每股指标：")
	w.line("- 每股收益(EPS)：%s元", valueNumber(d.PerShare.EPS))
	w.line("- 每股净资产(BPS)：%s元", valueNumber(d.PerShare.BPS))
	w.line("- 每股现金流(CFPS)：%s元", valueNumber(d.PerShare.CFPS))
	w.line("- 每股经营现金流(OCFPS)：%s元", valueNumber(d.PerShare.OCFPS))
	w.line("- 每股未分配利润：%s元", valueNumber(d.PerShare.RetainedEPS))

	return w.String() + valueInstructions
}

const valueInstructions = `请基于以上数据，从价值投资的角度进行分析。请特别注意：
1. 结合行业特点、公司竞争力、成长性等因素，给出合理的估值区间
2. 某些数据可能缺失或异常，分析时需要谨慎对待，或者从东财choice获取
3. 考虑当前市场环境和行业整体估值水平

在给出估值区间时，请充分考虑：
1. 公司所处行业特点和竞争格局
2. 公司的竞争优势和市场地位
3. 当前的盈利能力和成长性
4. 财务健康状况和风险因素
5. 宏观经济环境和行业周期
6. 可比公司的估值水平

请以JSON格式返回分析结果，包含以下内容：
1. investment_suggestion: 投资建议，包含summary(总体建议)、action(具体操作建议)和key_points(关注重点)
2. analysis: 详细分析，包含估值分析、财务健康状况、成长潜力和风险评估
3. price_analysis: 价格分析，包含合理价格区间和目标市值区间
实例：
    "price_analysis": {
        "合理价格区间": [
            xxx,
            xxx
        ],
        "目标市值区间": [
            xxx,
            xxx
        ]

请确保返回的是一个有效的JSON格式，数值使用数字而不是字符串（价格、市值等），文本分析使用字符串。分析要客观、专业、详细。`

// writeCompanyProfile renders the descriptive lines shared by the tao and masters prompts.
func writeCompanyProfile(w *promptWriter, info *models.CompanyBasicInfo) {
	w.line("公司基本信息：")
	w.line("- 公司名称：%s", info.Name)
	w.line("- 所属行业：%s", info.Industry)
	w.line("- 主营业务：%s", info.MainBusiness)
	w.line("- 经营范围：%s", info.BusinessScope)
	w.line("- 公司简介：%s", info.Introduction)
}

func buildTaoPrompt(info *models.CompanyBasicInfo) string {
	var w promptWriter
	w.line("请作为一位精通道德经的智者，运用道德经的智慧来分析%s(%s)这家公司。", info.Name, info.Code)
	w.blank()
	writeCompanyProfile(&w, info)
	w.blank()
	return w.String() + taoInstructions
}

const taoInstructions = `请从道德经的智慧角度，分析以下几个方面：

1. 道德经视角：
- 公司的经营理念是否符合"道法自然"的原则
- 企业的发展是否遵循"无为而治"的智慧
- 公司是否体现"上善若水"的品质
- 管理方式是否符合"柔弱胜刚强"的道理

2. 企业道德评估：
- 公司对待员工、客户、供应商的态度
- 企业的社会责任感和可持续发展理念
- 公司的价值观和企业文化
- 经营中的道德风险评估

3. 投资建议：
- 基于道德经智慧的投资建议
- 长期发展潜力分析
- 需要关注的风险点
- 持有建议

请以JSON格式返回分析结果，包含以下字段：
1. tao_philosophy: 道德经视角的分析
2. business_ethics: 企业道德评估
3. investment_advice: 投资建议

分析要客观、专业、深入，同时体现道德经的智慧。`

func buildMastersPrompt(info *models.CompanyBasicInfo, d *models.ValueAnalysisData) string {
	var w promptWriter
	w.line("请分别以五位价值投资大咖的视角，分析%s(%s)这家公司。", info.Name, info.Code)
	w.blank()

	writeCompanyProfile(&w, info)
	w.line("- 法人代表：%s", info.Chairman)
	w.line("- 总经理：%s", info.Manager)
	w.line("- 注册资本：%s万元", profileNumber(info.RegCapital))
	w.line("- 员工人数：%s人", profileCount(info.Employees))
	w.line("- 成立日期：%s", info.SetupDate)
	w.line("- 上市日期：%s", info.ListDate)
	w.blank()

	w.line("当前市场信息：")
	w.line("- 当前股价：%s元", mastersNumber(d.StockInfo.CurrentPrice))
	w.line("- 总市值：%s亿元", mastersNumber(d.Valuation.TotalMarketValue))
	w.line("- 流通市值：%s亿元", mastersNumber(d.Valuation.CirculatingMarketValue))
	w.line("- 流通比例：%s", mastersPercent(d.Valuation.CirculatingRatio))
	w.line("- 换手率：%s", mastersPercent(d.StockInfo.TurnoverRatio))
	w.blank()

	w.line("估值指标：")
	w.line("- 市盈率(PE)：%s", mastersNumber(d.Valuation.PERatio))
	w.line("- 市净率(PB)：%s", mastersNumber(d.Valuation.PBRatio))
	w.line("- 市销率(PS)：%s", mastersNumber(d.Valuation.PSRatio))
	w.line("- 股息率：%s", mastersPercent(d.Valuation.DividendYield))
	w.blank()

	w.line("盈利能力指标：")
	w.line("- ROE：%s", mastersPercent(d.Profitability.ROE))
	w.line("- ROE(扣非)：%s", mastersPercent(d.Profitability.DeductedROE))
	w.line("- ROA：%s", mastersPercent(d.Profitability.ROA))
	w.line("- 毛利率：%s", mastersPercent(d.Profitability.GrossMargin))
	w.line("- 净利率：%s", mastersPercent(d.Profitability.NetMargin))
	w.blank()

	w.line("成长能力指标：")
	w.line("- 净利润增长率：%s", mastersPercent(d.Growth.NetProfitGrowth))
	w.line("- 扣非净利润增长率：%s", mastersPercent(d.Growth.DeductedNetProfitGrowth))
	w.line("- 营业总收入增长率：%s", mastersPercent(d.Growth.RevenueGrowth))
	w.line("- 营业收入增长率：%s", mastersPercent(d.Growth.OperatingRevenueGrowth))
	w.blank()

	w.line("运营能力指标：")
	w.line("- 总资产周转率：%s", mastersNumber(d.Operation.AssetTurnover))
	w.line("- 存货周转率：%s", mastersNumber(d.Operation.InventoryTurnover))
	w.line("- 应收账款周转率：%s", mastersNumber(d.Operation.ReceivablesTurnover))
	w.line("- 流动资产周转率：%s", mastersNumber(d.Operation.CurrentAssetTurnover))
	w.blank()

	w.line("偿债能力指标：")
	w.line("- 流动比率：%s", mastersNumber(d.Solvency.CurrentRatio))
	w.line("- 速动比率：%s", mastersNumber(d.Solvency.QuickRatio))
	w.line("- 资产负债率：%s", mastersPercent(d.Solvency.DebtToAssets))
	w.line("- 产权比率：%s", mastersNumber(d.Solvency.EquityRatio))
	w.blank()

	w.line("现金流指标：")
	w.line("- 经营现金流/营收：%s", mastersPercent(d.CashFlow.OCFToRevenue))
	w.line("- 经营现金流/经营利润：%s", mastersPercent(d.CashFlow.OCFToOperatingProfit))
	w.line("- 经营现金流同比增长：%s", mastersPercent(d.CashFlow.OCFGrowth))
	w.blank()

	w.line("每股指标：")
	w.line("- 每股收益(EPS)：%s元", mastersNumber(d.PerShare.EPS))
	w.line("- 每股收益(扣非)：%s元", mastersNumber(d.PerShare.DeductedEPS))
	w.line("- 每股净资产：%s元", mastersNumber(d.PerShare.BPS))
	w.line("- 每股经营现金流：%s元", mastersNumber(d.PerShare.OCFPS))
	w.line("- 每股留存收益：%s元", mastersNumber(d.PerShare.RetainedEPS))
	w.line("- 每股现金流量：%s元", mastersNumber(d.PerShare.CFPS))
	w.line("- 每股息税前利润：%s元", mastersNumber(d.PerShare.EBITPS))
	w.blank()

	return w.String() + mastersInstructions
}

const mastersInstructions = `请分别从以下五位投资大师的视角进行分析：

1. 巴菲特视角：
- 是否具有护城河（品牌优势、规模效应、专利技术等）
- 管理层能力和诚信（从财务指标、现金流等反映的经营能力）
- 业务是否容易理解（商业模式的清晰度）
- 长期竞争优势（市场地位、核心竞争力）
- 是否是好生意（盈利能力、现金流状况）
- 以合理价格购买优秀企业的原则（估值分析）

2. 格雷厄姆视角：
- 安全边际分析（基于净资产、市盈率等）
- 内在价值计算（基于盈利能力和资产价值）
- 财务安全性（偿债能力、资产质量）
- 是否具有投资价值（基于定量分析）
- 基于定量分析的结论（综合财务指标评估）

3. 林园视角：
- 行业成长性（收入增长、利润增长）
- 公司治理结构（股权结构、管理层背景）
- 研发创新能力（技术优势、产品创新）
- 市场竞争格局（市场份额、竞争态势）
- 估值是否合理（相对估值和绝对估值）

4. 李大霄视角：
- 市场地位和品牌价值（行业地位、品牌影响力）
- 行业发展趋势（产业政策、市场空间）
- 政策影响分析（行业政策、监管环境）
- 投资时机把握（技术面和基本面）
- 投资建议（综合分析结论）

5. 段永平视角：
- 商业模式分析（盈利模式、竞争优势）
- 用户价值（产品力、客户粘性）
- 企业文化（管理理念、团队建设）
- 长期发展潜力（成长空间、持续经营能力）
- 是否值得长期持有（投资价值判断）

请以JSON格式返回分析结果，包含以下字段：
1. buffett_analysis: 巴菲特的分析观点
2. graham_analysis: 格雷厄姆的分析观点
3. lin_yuan_analysis: 林园的分析观点
4. li_daxiao_analysis: 李大霄的分析观点
5. duan_yongping_analysis: 段永平的分析观点

分析要客观、专业、深入，并体现每位投资大师的独特投资理念。请基于上述详细的财务数据进行分析（如果指标缺失或异常，请联网获取），尤其是定量指标的解读。`
