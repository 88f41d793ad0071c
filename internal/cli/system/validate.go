package system

import (
	"fmt"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/validation"
)

type ValidateCmd struct {
	Fix bool `help:"Repair fixable problems (a backup is taken first)."`
}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	fmt.Println("Validating habits and completion history...")
	habits, records, err := loadAll(ctx)
	if err != nil {
		return err
	}

	validator := newValidator(ctx)
	result := validator.ValidateHabits(habits, records)

	fmt.Println()
	fmt.Println(result.FormatReport())

	if !cmd.Fix || result.Fixable() == 0 {
		if result.Fixable() > 0 {
			fmt.Printf("\n%d problem(s) can be repaired with 'routinely validate --fix'.\n", result.Fixable())
		}
		return nil
	}

	ctx.PerformAutomaticBackup(ctx.Ctx())

	fixedHabits, fixedRecords, actions := validator.Fix(result, habits, records)
	for _, h := range fixedHabits {
		if err := ctx.Store.UpdateHabit(ctx.Ctx(), h); err != nil {
			return fmt.Errorf("failed to save habit %d: %w", h.ID, err)
		}
	}
	for _, r := range fixedRecords {
		if err := ctx.Store.UpsertCompletion(ctx.Ctx(), r); err != nil {
			return fmt.Errorf("failed to save completion record %s: %w", r.ID, err)
		}
	}

	fmt.Println()
	for _, a := range actions {
		fmt.Printf("✓ %s\n", a.Action)
	}
	fmt.Printf("\nApplied %d fix(es).\n", len(actions))
	return nil
}

func newValidator(ctx *cli.Context) *validation.Validator {
	v := validation.New()
	if ctx.Clock != nil {
		v = v.WithClock(ctx.Clock)
	}
	return v
}

func loadAll(ctx *cli.Context) ([]models.Habit, []models.CompletionRecord, error) {
	if err := ctx.Store.Load(ctx.Ctx()); err != nil {
		return nil, nil, fmt.Errorf("failed to load storage: %w", err)
	}
	habits, err := ctx.Store.GetAllHabits(ctx.Ctx())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load habits: %w", err)
	}
	records, err := ctx.Store.GetAllCompletions(ctx.Ctx(), false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load completion records: %w", err)
	}
	return habits, records, nil
}

func validate(ctx *cli.Context) (validation.ValidationResult, error) {
	habits, records, err := loadAll(ctx)
	if err != nil {
		return validation.ValidationResult{}, err
	}
	return newValidator(ctx).ValidateHabits(habits, records), nil
}
