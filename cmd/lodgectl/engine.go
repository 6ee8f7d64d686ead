package main

import (
	"context"
	"fmt"

	"lodge/di"
	"lodge/shared/constant"
	"lodge/shared/logger"
)

// actor tags catalog and reservation changes made from the command line.
const actor = "lodgectl"

func withEngine(fn func(ctx context.Context, engine *di.Admission) error) error {
	engine, cleanup, err := di.InitializeAdmission()
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}
	defer cleanup()

	logger.SetLogLevel(engine.Config)

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, actor)

	return fn(ctx, engine)
}
