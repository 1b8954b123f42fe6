package notifier

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"DayTrader/internal/model"
)

// Money renders a dollar amount rounded half away from zero to the cent, e.g. $1,234.50.
func Money(v float64) string {
	cents := decimal.NewFromFloat(v).Round(2).Shift(2).IntPart()
	return money.New(cents, money.USD).Display()
}

// Shares renders a share count without trailing zeros.
func Shares(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func code(s string) string { return "<code>" + html.EscapeString(s) + "</code>" }

// FormatHelp is the general help menu.
func FormatHelp(startingBalance float64) string {
	start := Money(startingBalance)
	var b strings.Builder
	b.WriteString("📘 <b>Day Trader Bot - Help Menu</b>\n")
	b.WriteString("Simulate stock trading with fake money! Buy, sell, and manage your virtual portfolio.\n\n")

	b.WriteString("💼 <b>What does it do?</b>\n")
	b.WriteString("This bot allows you to trade real stocks using fake money. Compete with friends to see who can grow their portfolio the most!\n\n")

	b.WriteString("💸 <b>How to make money?</b>\n")
	b.WriteString(fmt.Sprintf("Everyone starts with %s. If your balance hits $0 and you hold no shares, your balance is reset to %s.\n", start, start))
	b.WriteString("Earn more by <b>buying low</b> and <b>selling high</b>!\n\n")

	b.WriteString("📊 <b>Stock Command:</b>\n")
	b.WriteString(code("/stock <symbol> [interval] [outputsize]") + "\n")
	b.WriteString("➤ Check a stock's performance. Press <b>Buy Stock</b> to purchase shares.\n")
	b.WriteString(code("/stock TSLA") + " - Tesla stock (1-day interval)\n")
	b.WriteString(code("/stock AAPL 1week 100") + " - Apple, weekly, 100 entries\n\n")

	b.WriteString("👤 <b>User Command:</b>\n")
	b.WriteString(code("/user [@username]") + "\n")
	b.WriteString("➤ Check your own or another user's portfolio. Replying to someone's message works too.\n\n")

	b.WriteString("🛒 <b>Buy Command:</b>\n")
	b.WriteString(code("/buy <symbol> <shares>") + " - e.g. " + code("/buy TSLA 0.5") + "\n\n")

	b.WriteString("📉 <b>Sell Command:</b>\n")
	b.WriteString(code("/sell <symbol> <shares>") + " - e.g. " + code("/sell TSLA 5") + "\n\n")

	b.WriteString("🧾 " + code("/history [n]") + " - your recent trades\n")
	b.WriteString("🏆 " + code("/top") + " - leaderboard\n\n")

	b.WriteString("Commands also work with the ^ prefix. Happy trading! 📈")
	return b.String()
}

// FormatPortfolio renders a valued account for the named owner.
func FormatPortfolio(owner string, view *model.PortfolioView, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("💼 <b>%s's Portfolio</b>\n", html.EscapeString(owner)))
	b.WriteString(fmt.Sprintf("Current Balance: %s\n\n", Money(view.Balance)))

	b.WriteString("<b>Current Portfolio</b>\n")
	b.WriteString(fmt.Sprintf("Total Stock Shares: %.2f\n", view.TotalShares))
	b.WriteString(fmt.Sprintf("Total Worth: %s\n", Money(view.TotalWorth)))

	if len(view.Holdings) > 0 {
		b.WriteString("\n")
		for _, h := range view.Holdings {
			if h.Err != nil {
				b.WriteString(fmt.Sprintf("• %s: %s shares (price unavailable)\n", html.EscapeString(h.Symbol), Shares(h.Shares)))
				continue
			}
			b.WriteString(fmt.Sprintf("• %s: %s × %s = %s\n",
				html.EscapeString(h.Symbol), Shares(h.Shares), Money(h.Price), Money(h.Value)))
		}
	}

	b.WriteString(fmt.Sprintf("\n<i>%s</i>", now.Format("2006-01-02 15:04")))
	return b.String()
}

// FormatNoPortfolio is the reply for a user the ledger does not know.
func FormatNoPortfolio(name string) string {
	return fmt.Sprintf("%s doesn't have a portfolio yet.", html.EscapeString(name))
}

// FormatStockUsage explains the stock command.
func FormatStockUsage(intervals []string) string {
	quoted := make([]string, len(intervals))
	for i, iv := range intervals {
		quoted[i] = code(iv)
	}
	var b strings.Builder
	b.WriteString("📊 <b>Stock Command Usage</b>\n")
	b.WriteString("Fetch historical stock information with customizable intervals.\n\n")
	b.WriteString("🛠️ <b>Usage:</b> " + code("/stock <symbol> [interval] [outputsize]") + "\n\n")
	b.WriteString("📘 <b>Examples:</b>\n")
	b.WriteString(code("/stock TSLA") + " - Tesla stock (1-day interval)\n")
	b.WriteString(code("/stock AAPL 1week 100") + " - Apple, weekly, 100 entries\n\n")
	b.WriteString("⏳ <b>Supported Intervals:</b> " + strings.Join(quoted, ", ") + "\n\n")
	b.WriteString("Replace &lt;symbol&gt; with the stock ticker (e.g., TSLA, AAPL).")
	return b.String()
}

// FormatTradeUsage explains buy or sell.
func FormatTradeUsage(command string) string {
	var b strings.Builder
	switch command {
	case "buy":
		b.WriteString("🛒 <b>Buy Command Usage</b>\n")
		b.WriteString("Use this command to buy shares at the latest close.\n\n")
	default:
		command = "sell"
		b.WriteString("📉 <b>Sell Command Usage</b>\n")
		b.WriteString("Use this command to sell shares from your portfolio.\n\n")
	}
	b.WriteString("🛠️ <b>Usage:</b> " + code("/"+command+" <symbol> <shares>") + "\n\n")
	b.WriteString("📘 <b>Examples:</b>\n")
	b.WriteString(code("/"+command+" TSLA 5") + " - 5 Tesla shares\n")
	b.WriteString(code("/"+command+" AAPL 2") + " - 2 Apple shares\n\n")
	b.WriteString("Replace &lt;symbol&gt; with the stock ticker (e.g., TSLA, AAPL).")
	return b.String()
}

// FormatStockMetrics renders the stock command result.
func FormatStockMetrics(m *model.StockMetrics) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s Stock Metrics</b> (%s, %d bars)\n\n", html.EscapeString(m.Symbol), m.Interval, m.Bars))
	b.WriteString(fmt.Sprintf("Current Price: %s\n", Money(m.CurrentPrice)))
	b.WriteString(fmt.Sprintf("1 Month Change: %.2f%%\n", m.MonthChange))
	b.WriteString(fmt.Sprintf("YTD Change: %.2f%%\n", m.PeriodChange))
	b.WriteString(fmt.Sprintf("High / Low: %s / %s\n", Money(m.High), Money(m.Low)))
	if m.SMA20 > 0 {
		b.WriteString(fmt.Sprintf("SMA(20): %s\n", Money(m.SMA20)))
	}
	b.WriteString(fmt.Sprintf("RSI(14): %.0f\n", m.RSI14))
	if !m.From.IsZero() {
		b.WriteString(fmt.Sprintf("\n<i>%s → %s</i>", m.From.Format("2006-01-02"), m.To.Format("2006-01-02")))
	}
	return b.String()
}

// FormatBought confirms a buy command.
func FormatBought(t *model.TradeResult) string {
	return fmt.Sprintf("✅ Bought %s shares of %s for %s. Your new balance is %s.",
		Shares(t.Shares), html.EscapeString(t.Symbol), Money(t.Amount), Money(t.BalanceAfter))
}

// FormatSold confirms a sell command.
func FormatSold(t *model.TradeResult) string {
	return fmt.Sprintf("✅ Sold %s shares of %s for %s. Your new balance is %s.",
		Shares(t.Shares), html.EscapeString(t.Symbol), Money(t.Amount), Money(t.BalanceAfter))
}

// FormatButtonPurchase reports the outcome of a Buy Stock prompt, quoted at
// the price the button was created with.
func FormatButtonPurchase(ok bool, shares float64, symbol string, price float64) string {
	verb := "Failed to purchase"
	if ok {
		verb = "Successfully purchased"
	}
	return fmt.Sprintf("%s %s shares of %s at %s each. (%s)",
		verb, Shares(shares), html.EscapeString(symbol), Money(price), Money(shares*price))
}

// FormatLeaderboard renders standings, best first.
func FormatLeaderboard(standings []model.Standing, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🏆 <b>Leaderboard</b> | %s\n\n", now.Format("2006-01-02")))
	if len(standings) == 0 {
		b.WriteString("No traders yet.")
		return b.String()
	}
	for i, s := range standings {
		name := s.Username
		if name == "" {
			name = s.UserID
		} else {
			name = "@" + name
		}
		medal := fmt.Sprintf("%d.", i+1)
		switch i {
		case 0:
			medal = "🥇"
		case 1:
			medal = "🥈"
		case 2:
			medal = "🥉"
		}
		b.WriteString(fmt.Sprintf("%s %s  %s (cash %s, stock %s)\n",
			medal, html.EscapeString(name), Money(s.Total), Money(s.Balance), Money(s.Worth)))
	}
	return b.String()
}

// FormatHistory renders a user's recent trades, newest first.
func FormatHistory(owner string, trades []model.TradeResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧾 <b>%s's recent trades</b>\n\n", html.EscapeString(owner)))
	if len(trades) == 0 {
		b.WriteString("No trades yet.")
		return b.String()
	}
	for _, t := range trades {
		b.WriteString(fmt.Sprintf("%s %s %s %s @ %s = %s\n",
			t.ExecutedAt.Format("01-02 15:04"), t.Side, Shares(t.Shares),
			html.EscapeString(t.Symbol), Money(t.Price), Money(t.Amount)))
	}
	return b.String()
}
