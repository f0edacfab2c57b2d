package ai

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the cycle view into the Chinese-language trading
// prompt the decision endpoint answers with per-symbol JSON.
func BuildPrompt(view View) string {
	var b strings.Builder

	b.WriteString("你是一位专业的中国A股交易员。请分析市场并做出交易决策。\n\n市场数据：\n")
	for _, symbol := range view.Symbols {
		snap, ok := view.Snapshots[symbol]
		if !ok || snap.Indeterminate() {
			fmt.Fprintf(&b, "%s: 行情暂不可用\n", symbol)
			continue
		}
		fmt.Fprintf(&b, "%s (%s): ¥%.2f (%+.2f%%)\n", symbol, snap.Name, snap.Price, snap.ChangePct)
		fmt.Fprintf(&b, "  MA5: ¥%.2f, MA10: ¥%.2f, MA20: ¥%.2f, RSI: %.1f, MACD: %.2f\n",
			snap.MA5, snap.MA10, snap.MA20, snap.RSI14, snap.MACD)
	}

	p := view.Portfolio
	b.WriteString("\n账户状态：\n")
	fmt.Fprintf(&b, "- 初始资金：¥%.2f\n", p.InitialCapital)
	fmt.Fprintf(&b, "- 总资产：¥%.2f\n", p.TotalValue)
	fmt.Fprintf(&b, "- 可用资金：¥%.2f\n", p.Cash)
	fmt.Fprintf(&b, "- 总收益率：%.2f%%\n", p.TotalReturnPct())

	b.WriteString("\n当前持仓：\n")
	if len(p.Positions) == 0 {
		b.WriteString("无持仓\n")
	}
	for _, pos := range p.Positions {
		fmt.Fprintf(&b, "- %s: %d股 @ ¥%.2f", pos.Symbol, pos.Quantity, pos.AvgCost)
		if pos.CurrentPrice > 0 {
			pnlPct := (pos.CurrentPrice - pos.AvgCost) / pos.AvgCost * 100
			fmt.Fprintf(&b, " (当前¥%.2f, %+.2f%%)", pos.CurrentPrice, pnlPct)
		}
		b.WriteString("\n")
	}

	b.WriteString(`
A股交易规则：
1. T+1交易制度：当天买入的股票，第二天才能卖出
2. 涨跌停限制：普通股票±10%，ST股票±5%
3. 交易单位：买入必须是100股（1手）的整数倍
4. 费用：买入佣金约0.03%（最低5元）；卖出佣金约0.03%（最低5元）+ 印花税0.1%
5. 无杠杆：不支持融资融券

输出格式（仅JSON）：
` + codeFence + `json
{
  "股票代码": {
    "signal": "buy|sell|hold",
    "quantity": 100,
    "profit_target": 15.50,
    "stop_loss": 13.20,
    "confidence": 0.75,
    "justification": "简短理由"
  }
}
` + codeFence + `

注意：
- quantity 必须是100的整数倍
- signal只能是：buy、sell、hold
- 已有持仓的可以sell，没有持仓的可以buy
- 请严格按照JSON格式输出，不要包含其他内容

请分析并输出JSON：
`)

	return b.String()
}
