package api

import (
	"context"

	"github.com/permitio/permit-go/futures"
	"github.com/permitio/permit-go/models"
)

// ConditionSetsAsync manages the user sets and resource sets of the
// currently selected environment.
type ConditionSetsAsync struct {
	*base
}

func (a *ConditionSetsAsync) List(ctx context.Context, page, perPage int) *futures.Future[[]models.ConditionSetRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) ([]models.ConditionSetRead, error) {
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return nil, err
		}
		var out []models.ConditionSetRead
		err := a.get(ctx, a.schemaPath("condition_sets")+pageQuery(page, perPage), &out)
		return out, err
	})
}

func (a *ConditionSetsAsync) Get(ctx context.Context, conditionSetKey string) *futures.Future[models.ConditionSetRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.ConditionSetRead, error) {
		var out models.ConditionSetRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.get(ctx, a.schemaPath("condition_sets", conditionSetKey), &out)
		return out, err
	})
}

func (a *ConditionSetsAsync) Create(ctx context.Context, conditionSet models.ConditionSetCreate) *futures.Future[models.ConditionSetRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.ConditionSetRead, error) {
		var out models.ConditionSetRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.post(ctx, a.schemaPath("condition_sets"), conditionSet, &out)
		return out, err
	})
}

func (a *ConditionSetsAsync) Update(ctx context.Context, conditionSetKey string, conditionSet models.ConditionSetUpdate) *futures.Future[models.ConditionSetRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.ConditionSetRead, error) {
		var out models.ConditionSetRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.patch(ctx, a.schemaPath("condition_sets", conditionSetKey), conditionSet, &out)
		return out, err
	})
}

func (a *ConditionSetsAsync) Delete(ctx context.Context, conditionSetKey string) *futures.Future[struct{}] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (struct{}, error) {
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, a.delete(ctx, a.schemaPath("condition_sets", conditionSetKey), nil)
	})
}

// ConditionSets is the blocking facade over ConditionSetsAsync.
type ConditionSets struct {
	async *ConditionSetsAsync
}

// Async returns the future-based form of this API.
func (a *ConditionSets) Async() *ConditionSetsAsync {
	return a.async
}

func (a *ConditionSets) List(ctx context.Context, page, perPage int) ([]models.ConditionSetRead, error) {
	return a.async.List(ctx, page, perPage).Await(ctx)
}

func (a *ConditionSets) Get(ctx context.Context, conditionSetKey string) (models.ConditionSetRead, error) {
	return a.async.Get(ctx, conditionSetKey).Await(ctx)
}

func (a *ConditionSets) Create(ctx context.Context, conditionSet models.ConditionSetCreate) (models.ConditionSetRead, error) {
	return a.async.Create(ctx, conditionSet).Await(ctx)
}

func (a *ConditionSets) Update(ctx context.Context, conditionSetKey string, conditionSet models.ConditionSetUpdate) (models.ConditionSetRead, error) {
	return a.async.Update(ctx, conditionSetKey, conditionSet).Await(ctx)
}

func (a *ConditionSets) Delete(ctx context.Context, conditionSetKey string) error {
	_, err := a.async.Delete(ctx, conditionSetKey).Await(ctx)
	return err
}
