package api

import (
	"context"
	"net/url"

	"github.com/permitio/permit-go/futures"
	"github.com/permitio/permit-go/models"
)

// RelationshipTupleFilter narrows a relationship tuple listing. Empty fields
// match everything.
type RelationshipTupleFilter struct {
	Subject  string
	Relation string
	Object   string
	Tenant   string
}

func (f RelationshipTupleFilter) query(page, perPage int) string {
	q := url.Values{}
	if f.Subject != "" {
		q.Set("subject", f.Subject)
	}
	if f.Relation != "" {
		q.Set("relation", f.Relation)
	}
	if f.Object != "" {
		q.Set("object", f.Object)
	}
	if f.Tenant != "" {
		q.Set("tenant", f.Tenant)
	}
	base := pageQuery(page, perPage)
	if len(q) == 0 {
		return base
	}
	return base + "&" + q.Encode()
}

// RelationshipTuplesAsync manages the subject/relation/object facts of the
// currently selected environment, used for relationship based decisions.
type RelationshipTuplesAsync struct {
	*base
}

func (a *RelationshipTuplesAsync) List(ctx context.Context, filter RelationshipTupleFilter, page, perPage int) *futures.Future[[]models.RelationshipTupleRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) ([]models.RelationshipTupleRead, error) {
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return nil, err
		}
		var out []models.RelationshipTupleRead
		err := a.get(ctx, a.factsPath("relationship_tuples")+filter.query(page, perPage), &out)
		return out, err
	})
}

func (a *RelationshipTuplesAsync) Create(ctx context.Context, tuple models.RelationshipTupleCreate) *futures.Future[models.RelationshipTupleRead] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (models.RelationshipTupleRead, error) {
		var out models.RelationshipTupleRead
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return out, err
		}
		err := a.post(ctx, a.factsPath("relationship_tuples"), tuple, &out)
		return out, err
	})
}

func (a *RelationshipTuplesAsync) Delete(ctx context.Context, tuple models.RelationshipTupleDelete) *futures.Future[struct{}] {
	return futures.Go(a.runner, ctx, func(ctx context.Context) (struct{}, error) {
		if err := a.ensureAccessLevel(ctx, ContextEnvironment); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, a.delete(ctx, a.factsPath("relationship_tuples"), tuple)
	})
}

// RelationshipTuples is the blocking facade over RelationshipTuplesAsync.
type RelationshipTuples struct {
	async *RelationshipTuplesAsync
}

// Async returns the future-based form of this API.
func (a *RelationshipTuples) Async() *RelationshipTuplesAsync {
	return a.async
}

func (a *RelationshipTuples) List(ctx context.Context, filter RelationshipTupleFilter, page, perPage int) ([]models.RelationshipTupleRead, error) {
	return a.async.List(ctx, filter, page, perPage).Await(ctx)
}

func (a *RelationshipTuples) Create(ctx context.Context, tuple models.RelationshipTupleCreate) (models.RelationshipTupleRead, error) {
	return a.async.Create(ctx, tuple).Await(ctx)
}

func (a *RelationshipTuples) Delete(ctx context.Context, tuple models.RelationshipTupleDelete) error {
	_, err := a.async.Delete(ctx, tuple).Await(ctx)
	return err
}

// BulkCreate writes the tuples strictly one after another in caller order;
// the control plane does not guarantee write commutativity. Stops at the
// first failure and reports how many tuples were written.
func (a *RelationshipTuples) BulkCreate(ctx context.Context, tuples []models.RelationshipTupleCreate) (int, error) {
	for i, tuple := range tuples {
		if _, err := a.Create(ctx, tuple); err != nil {
			return i, err
		}
	}
	return len(tuples), nil
}
