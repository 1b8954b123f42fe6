package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// parseCommand splits "/cmd@BotName arg1 arg2" or "^cmd arg1". Commands
// addressed to a different bot report false.
func parseCommand(text, botName string) (string, []string, bool) {
	text = strings.TrimSpace(text)
	if text == "" || (text[0] != '/' && text[0] != '^') {
		return "", nil, false
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return "", nil, false
	}
	cmd := fields[0]
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		target := cmd[at+1:]
		cmd = cmd[:at]
		if botName != "" && !strings.EqualFold(target, strings.TrimPrefix(botName, "@")) {
			return "", nil, false
		}
	}
	if cmd == "" {
		return "", nil, false
	}
	return strings.ToLower(cmd), fields[1:], true
}

const buyButtonPrefix = "buy"

// encodeBuyButton packs the button owner, symbol and displayed price into
// callback data. Telegram caps callback data at 64 bytes.
func encodeBuyButton(ownerID, symbol string, price float64) string {
	return strings.Join([]string{
		buyButtonPrefix,
		ownerID,
		symbol,
		strconv.FormatFloat(price, 'f', 4, 64),
	}, "|")
}

type buyButton struct {
	OwnerID string
	Symbol  string
	Price   float64
}

func decodeBuyButton(data string) (buyButton, error) {
	parts := strings.Split(data, "|")
	if len(parts) != 4 || parts[0] != buyButtonPrefix {
		return buyButton{}, fmt.Errorf("unknown button %q", data)
	}
	price, err := strconv.ParseFloat(parts[3], 64)
	if err != nil || price <= 0 {
		return buyButton{}, fmt.Errorf("bad price in button %q", data)
	}
	if parts[1] == "" || parts[2] == "" {
		return buyButton{}, fmt.Errorf("incomplete button %q", data)
	}
	return buyButton{OwnerID: parts[1], Symbol: parts[2], Price: price}, nil
}
