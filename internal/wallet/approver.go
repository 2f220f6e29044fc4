package wallet

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"cryptocomm/internal/domain"
)

// Approver asks the user whether to expose account to the application.
type Approver interface {
	Approve(ctx context.Context, account domain.Address, network domain.NetworkID) (bool, error)
}

// AutoApprove approves every request. Used for --yes and tests.
type AutoApprove struct{}

func (AutoApprove) Approve(context.Context, domain.Address, domain.NetworkID) (bool, error) {
	return true, nil
}

// PromptApprover asks on Out and reads a y/N answer from In.
type PromptApprover struct {
	In  io.Reader
	Out io.Writer
}

func (p PromptApprover) Approve(ctx context.Context, account domain.Address, network domain.NetworkID) (bool, error) {
	fmt.Fprintf(p.Out, "Connect account %s on network %s? [y/N] ", account.Hex(), network)

	answer := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(p.In).ReadString('\n')
		answer <- line
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}
