package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/ternarybob/stockdash/internal/common"
	"github.com/ternarybob/stockdash/internal/models"
)

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.SeparateRows = false
	return tw
}

// pct renders a canonical fraction as a percentage.
func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func colorChange(v float64, s string) string {
	switch {
	case v > 0:
		// A-share convention: red is up
		return text.Colors{text.FgRed}.Sprint(s)
	case v < 0:
		return text.Colors{text.FgGreen}.Sprint(s)
	}
	return s
}

func targetBand(t models.WatchTarget) string {
	if t.TargetMarketValue == nil {
		return "-"
	}
	bound := func(v *float64) string {
		if v == nil {
			return "?"
		}
		return fmt.Sprintf("%.0f", *v)
	}
	if t.TargetMarketValue.Min == nil && t.TargetMarketValue.Max == nil {
		return "-"
	}
	return bound(t.TargetMarketValue.Min) + " ~ " + bound(t.TargetMarketValue.Max)
}

func renderStock(w io.Writer, resp *models.StockResponse) {
	s := resp.StockInfo
	tw := newTable(w)
	tw.SetTitle(fmt.Sprintf("%s (%s)", s.Name, s.Code))
	tw.AppendRows([]table.Row{
		{"价格", fmt.Sprintf("%.2f", s.Price)},
		{"涨跌幅", colorChange(s.ChangePercent, pct(s.ChangePercent))},
		{"总市值(亿元)", fmt.Sprintf("%.2f", s.MarketValue)},
		{"目标市值(亿元)", targetBand(resp.Targets)},
		{"市盈率", fmt.Sprintf("%.2f", s.PERatio)},
		{"市净率", fmt.Sprintf("%.2f", s.PBRatio)},
		{"市销率", fmt.Sprintf("%.2f", s.PSRatio)},
		{"股息率", pct(s.DividendYield)},
		{"ROE", pct(s.ROE)},
		{"毛利率", pct(s.GrossProfitMargin)},
		{"净利率", pct(s.NetProfitMargin)},
		{"资产负债率", pct(s.DebtToAssets)},
		{"营收同比", pct(s.RevenueYoY)},
		{"净利润同比", pct(s.NetProfitYoY)},
		{"每股净资产", fmt.Sprintf("%.2f", s.BPS)},
		{"每股经营现金流", fmt.Sprintf("%.2f", s.OCFPS)},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	if s.FromCache {
		tw.SetCaption("cached snapshot")
	}
	tw.Render()
}

func renderWatchlist(w io.Writer, entries []models.WatchlistEntry) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"代码", "名称", "价格", "涨跌幅", "总市值", "目标市值", "PE", "PB"})
	for _, e := range entries {
		if e.Snapshot == nil {
			tw.AppendRow(table.Row{e.Summary.Code, e.Summary.Name, "-", "-", "-", targetBand(e.Targets), "-", "-"})
			continue
		}
		s := e.Snapshot.StockInfo
		tw.AppendRow(table.Row{
			s.Code,
			s.Name,
			fmt.Sprintf("%.2f", s.Price),
			colorChange(s.ChangePercent, pct(s.ChangePercent)),
			fmt.Sprintf("%.2f", s.MarketValue),
			targetBand(e.Targets),
			fmt.Sprintf("%.2f", s.PERatio),
			fmt.Sprintf("%.2f", s.PBRatio),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	tw.Render()
}

func renderIndices(w io.Writer, quotes []models.IndexQuote) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"代码", "名称", "点位", "涨跌幅"})
	for _, q := range quotes {
		// Change is already a percentage here
		tw.AppendRow(table.Row{q.Code, q.Name, fmt.Sprintf("%.2f", q.Price), colorChange(q.Change, fmt.Sprintf("%.2f%%", q.Change))})
	}
	tw.Render()
}

func renderCache(w io.Writer, snapshots []*models.SnapshotRecord, analyses []*models.AnalysisRecord, now time.Time) {
	tw := newTable(w)
	tw.SetTitle("快照缓存")
	tw.AppendHeader(table.Row{"代码", "类型", "日期", "状态", "更新时间"})
	for _, r := range snapshots {
		state := "过期"
		if common.IsFresh(r.AsOfDate, now) {
			state = "有效"
		}
		tw.AppendRow(table.Row{r.Code, string(r.Kind), r.AsOfDate, state, r.UpdatedAt.Format("2006-01-02 15:04:05")})
	}
	tw.Render()

	tw = newTable(w)
	tw.SetTitle("分析缓存")
	tw.AppendHeader(table.Row{"代码", "分析", "大小", "生成时间"})
	for _, r := range analyses {
		tw.AppendRow(table.Row{r.Code, string(r.Track), len(r.Payload), r.CreatedAt.Format("2006-01-02 15:04:05")})
	}
	tw.Render()
}
