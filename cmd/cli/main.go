package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/monegment/monegment/infra/initializer"
	"github.com/monegment/monegment/pkg/app"
	"github.com/monegment/monegment/pkg/config"
	"github.com/monegment/monegment/pkg/domain/ledger"
	"github.com/monegment/monegment/pkg/domain/wallet"
	"golang.org/x/term"
)

const usage = `Usage: monegment-cli <command> <user_id> [arguments]
Commands:
  balance  <user_id>                              wallet balances
  advice   <user_id>                              allocation recommendation
  goals    <user_id>                              savings goals
  transfer <user_id> <source> <target> <amount>   move money between wallets
  token    <user_id>                              issue an API token`

var (
	title = color.New(color.FgCyan, color.Bold)
	good  = color.New(color.FgGreen)
	bad   = color.New(color.FgRed)
	faint = color.New(color.Faint)
)

func main() {
	color.NoColor = color.NoColor || !term.IsTerminal(int(os.Stdout.Fd()))
	if err := run(context.Background(), os.Args[1:]); err != nil {
		_, _ = bad.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		fmt.Println(usage)
		return nil
	}
	cmd := args[0]
	userID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", args[1], err)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	deps, cleanup, err := initializer.InitializeDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer cleanup()
	a := app.New(deps, cfg)

	switch cmd {
	case "balance":
		return balance(ctx, a, userID)
	case "advice":
		return advice(ctx, a, userID)
	case "goals":
		return goals(ctx, a, userID)
	case "transfer":
		if len(args) < 5 {
			return fmt.Errorf("usage: transfer <user_id> <source> <target> <amount>")
		}
		amount, err := strconv.ParseInt(args[4], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[4], err)
		}
		return transfer(ctx, a, userID, args[2], args[3], amount)
	case "token":
		token, err := a.AuthService.GenerateToken(ctx, userID)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	default:
		fmt.Println(usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func balance(ctx context.Context, a *app.App, userID int64) error {
	b, err := a.BalanceService.GetBalances(ctx, userID)
	if err != nil {
		return err
	}
	printBalances(b)
	return nil
}

func printBalances(b ledger.Balances) {
	_, _ = title.Println("Balances")
	for _, w := range wallet.All {
		fmt.Printf("  %-9s %s\n", w, amount(b.Of(w)))
	}
	fmt.Printf("  %-9s %s\n", "Total", amount(b.Total))
}

func advice(ctx context.Context, a *app.App, userID int64) error {
	rec, err := a.AdvisorService.RecommendAllocation(ctx, userID)
	if err != nil {
		return err
	}
	_, _ = title.Println("Advice")
	for _, line := range rec.Advice {
		fmt.Println("  " + line)
	}
	if rec.Action != nil {
		_, _ = good.Printf("  Move %s from %s to %q\n",
			amount(rec.Action.Amount), rec.Action.Wallet, rec.Action.GoalTitle)
	}
	if rec.Note != "" {
		_, _ = faint.Println("  " + rec.Note)
	}
	return nil
}

func goals(ctx context.Context, a *app.App, userID int64) error {
	list, err := a.GoalService.ListGoals(ctx, userID)
	if err != nil {
		return err
	}
	_, _ = title.Println("Goals")
	if len(list) == 0 {
		_, _ = faint.Println("  none")
	}
	for _, g := range list {
		status := faint
		if g.Met() {
			status = good
		}
		_, _ = status.Printf("  [%s] %-20s %s / %s  due %s\n", g.Priority, g.Title,
			amount(g.Current), amount(g.Target), g.Deadline.Format("2006-01-02"))
	}
	return nil
}

func transfer(ctx context.Context, a *app.App, userID int64, source, target string, value int64) error {
	from, to := wallet.Normalize(source), wallet.Normalize(target)
	if term.IsTerminal(int(os.Stdin.Fd())) && !confirm(fmt.Sprintf("Move %s from %s to %s?", amount(value), from, to)) {
		_, _ = faint.Println("Cancelled")
		return nil
	}
	if _, err := a.WalletService.Transfer(ctx, userID, source, target, value); err != nil {
		return err
	}
	_, _ = good.Printf("Moved %s from %s to %s\n", amount(value), from, to)
	return balance(ctx, a, userID)
}

func confirm(prompt string) bool {
	fmt.Print(prompt + " [y/N] ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// amount formats v with dot thousands separators, e.g. Rp 1.400.000.
func amount(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return "Rp " + sign + b.String()
}
