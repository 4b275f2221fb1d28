package command

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"tbot/internal/core/domain"
	"tbot/internal/core/port"
)

const chooseHint = "Give me some options separated by commas"

type Choose struct {
	sender port.ReplySender
	intn   func(n int) int
}

func NewChoose(sender port.ReplySender) *Choose {
	return &Choose{sender: sender, intn: rand.IntN}
}

func (c *Choose) Describe() domain.CommandInfo {
	return domain.CommandInfo{
		Name:        "choose",
		Description: "Pick one of several options",
		Aliases:     []string{"pick"},
		Args: []domain.Argument{
			{Name: "options", Description: "Options separated by commas", Required: true},
		},
	}
}

func (c *Choose) Respond(ctx context.Context, cmd *domain.Command) error {
	options := splitOptions(cmd.Arg(0))

	text := chooseHint
	if len(options) > 0 {
		text = fmt.Sprintf("I choose %s!", options[c.intn(len(options))])
	}

	err := c.sender.SendReply(ctx, cmd, domain.Reply{Content: text})
	if err != nil {
		return fmt.Errorf("failed to send choice: %w", err)
	}

	return nil
}

func splitOptions(s string) []string {
	var options []string
	for _, o := range strings.Split(s, ",") {
		o = strings.Trim(strings.TrimSpace(o), `"'`)
		if o != "" {
			options = append(options, o)
		}
	}
	return options
}

type CoinFlip struct {
	sender port.ReplySender
	intn   func(n int) int
}

func NewCoinFlip(sender port.ReplySender) *CoinFlip {
	return &CoinFlip{sender: sender, intn: rand.IntN}
}

func (c *CoinFlip) Describe() domain.CommandInfo {
	return domain.CommandInfo{
		Name:        "coinflip",
		Description: "Flip a coin",
		Aliases:     []string{"flip", "flipcoin"},
	}
}

func (c *CoinFlip) Respond(ctx context.Context, cmd *domain.Command) error {
	side := "Heads!"
	if c.intn(2) == 1 {
		side = "Tails!"
	}

	err := c.sender.SendReply(ctx, cmd, domain.Reply{Content: side})
	if err != nil {
		return fmt.Errorf("failed to send coin flip: %w", err)
	}

	return nil
}
