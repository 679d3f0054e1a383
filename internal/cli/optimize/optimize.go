package optimize

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/optimizer"
)

type OptimizeCmd struct {
	Days        int  `help:"Days of check-in history to analyze." default:"30"`
	DryRun      bool `help:"Show suggestions without applying them."`
	Interactive bool `help:"Review and apply suggestions one at a time."`
	AutoApply   bool `help:"Apply every suggestion without confirmation."`
}

func (c *OptimizeCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	bg := context.Background()
	svc := ctx.Planner()

	fmt.Println("Analyzing check-in history...")
	optimizations, err := svc.Optimize(bg, c.Days)
	if err != nil {
		return fmt.Errorf("failed to analyze check-ins: %w", err)
	}

	if len(optimizations) == 0 {
		fmt.Println("✅ No optimizations needed. Sessions are going to plan!")
		return nil
	}

	fmt.Printf("\n📊 Found %d optimization suggestion(s):\n\n", len(optimizations))
	for i, opt := range optimizations {
		displayOptimization(i+1, opt)
	}

	switch {
	case c.DryRun:
		fmt.Println("💡 This was a dry run. Use --interactive to apply optimizations.")
		return nil
	case c.AutoApply:
		if _, err := svc.ApplyOptimizations(bg, optimizations); err != nil {
			return fmt.Errorf("failed to apply optimizations: %w", err)
		}
		fmt.Printf("✨ Applied %d optimization(s).\n", len(optimizations))
		return nil
	case c.Interactive:
		return c.runInteractive(bg, ctx, optimizations)
	}

	fmt.Println("💡 To apply these optimizations:")
	fmt.Println("  - Use --interactive to review and select which to apply")
	fmt.Println("  - Use --auto-apply to apply all automatically")
	return nil
}

func (c *OptimizeCmd) runInteractive(bg context.Context, ctx *cli.Context, optimizations []optimizer.Optimization) error {
	var chosen []optimizer.Optimization

review:
	for i, opt := range optimizations {
		fmt.Printf("\n[%d/%d] ", i+1, len(optimizations))
		displayOptimization(0, opt)

		var choice string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Apply this optimization?").
					Options(
						huh.NewOption("Apply", "apply"),
						huh.NewOption("Skip", "skip"),
						huh.NewOption("Skip remaining", "skip_all"),
					).
					Value(&choice),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive form error: %w", err)
		}

		switch choice {
		case "apply":
			chosen = append(chosen, opt)
		case "skip_all":
			break review
		}
	}

	if len(chosen) > 0 {
		if _, err := ctx.Planner().ApplyOptimizations(bg, chosen); err != nil {
			return fmt.Errorf("failed to apply optimizations: %w", err)
		}
	}
	fmt.Printf("\n✨ Completed: %d applied, %d skipped\n", len(chosen), len(optimizations)-len(chosen))
	return nil
}

func displayOptimization(num int, opt optimizer.Optimization) {
	prefix := ""
	if num > 0 {
		prefix = fmt.Sprintf("%d. ", num)
	}

	var label string
	switch opt.Type {
	case optimizer.OptimizationReduceSessionLength:
		label = "⏱️  Shorter sessions"
	case optimizer.OptimizationStartLater:
		label = "🌅 Start later"
	case optimizer.OptimizationStartEarlier:
		label = "🌄 Start earlier"
	case optimizer.OptimizationFavorGaps:
		label = "🧩 Favor good gaps"
	case optimizer.OptimizationFavorPriority:
		label = "🎯 Favor priority"
	default:
		label = "🔧 Optimize"
	}

	fmt.Printf("%s%s\n", prefix, cli.HeaderStyle.Render(label))
	fmt.Printf("   Setting: %s\n", opt.Setting)
	fmt.Printf("   Reason: %s\n", opt.Reason)
	if opt.CurrentValue != nil {
		fmt.Printf("   Current: %v\n", opt.CurrentValue)
	}
	if opt.SuggestedValue != nil {
		fmt.Printf("   Suggested: %v\n", opt.SuggestedValue)
	}
	fmt.Println()
}
