package service

import (
	"context"
	"sort"
	"strings"

	"github.com/mkrish/fintrack/internal/errs"
	"github.com/mkrish/fintrack/internal/models"
	"github.com/mkrish/fintrack/internal/permission"
	"github.com/mkrish/fintrack/internal/scope"
	"github.com/mkrish/fintrack/internal/storage"
)

// CategoryService manages transaction categories. Default categories are
// shared, visible to everyone and immutable; user categories follow the
// normal scope and permission rules.
type CategoryService struct {
	store  storage.Store
	scopes *scope.Resolver
	perms  *permission.Evaluator
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(store storage.Store, scopes *scope.Resolver, perms *permission.Evaluator) *CategoryService {
	return &CategoryService{store: store, scopes: scopes, perms: perms}
}

// CategoryInput carries the caller-settable fields of a category.
type CategoryInput struct {
	Name        string
	Description string
	Color       string
}

// List returns the defaults plus the categories in the actor's scope,
// deduplicated and sorted by name, case-insensitively.
func (s *CategoryService) List(ctx context.Context, actor *scope.Actor) ([]*models.Category, error) {
	defaults, err := s.store.ListDefaultCategories(ctx)
	if err != nil {
		return nil, err
	}

	userIDs, err := s.scopes.VisibleUserIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	scoped, err := s.store.ListCategoriesForUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(defaults)+len(scoped))
	categories := make([]*models.Category, 0, len(defaults)+len(scoped))
	for _, c := range append(defaults, scoped...) {
		if !seen[c.ID] {
			seen[c.ID] = true
			categories = append(categories, c)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		return strings.ToLower(categories[i].Name) < strings.ToLower(categories[j].Name)
	})
	return categories, nil
}

// Get returns one category visible to the actor.
func (s *CategoryService) Get(ctx context.Context, actor *scope.Actor, id string) (*models.Category, error) {
	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, errs.NotFound("category")
	}
	if category.IsDefault {
		return category, nil
	}
	visible, err := s.perms.CanView(ctx, actor, category.UserID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, errs.NotFound("category")
	}
	return category, nil
}

// Create adds a category owned by the actor. The name must be unique among
// the defaults and the actor's own categories.
func (s *CategoryService) Create(ctx context.Context, actor *scope.Actor, input CategoryInput) (*models.Category, error) {
	if err := s.perms.CanCreate(ctx, actor); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, errs.Validation("category name is required")
	}
	exists, err := s.store.CategoryNameExists(ctx, input.Name, actor.User.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.Validation("category with name %q already exists", input.Name)
	}

	category := &models.Category{
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		UserID:      actor.User.ID,
	}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update changes a user category. Defaults are immutable.
func (s *CategoryService) Update(ctx context.Context, actor *scope.Actor, id string, input CategoryInput) (*models.Category, error) {
	category, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if category.IsDefault {
		return nil, errs.AccessDenied("default categories cannot be modified")
	}
	if err := s.perms.CanMutate(ctx, actor, category.UserID); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, errs.Validation("category name is required")
	}
	if !strings.EqualFold(input.Name, category.Name) {
		exists, err := s.store.CategoryNameExists(ctx, input.Name, category.UserID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errs.Validation("category with name %q already exists", input.Name)
		}
	}

	category.Name = input.Name
	category.Description = input.Description
	category.Color = input.Color
	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a user category outright. Categories have no soft delete.
func (s *CategoryService) Delete(ctx context.Context, actor *scope.Actor, id string) error {
	category, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if category.IsDefault {
		return errs.AccessDenied("default categories cannot be deleted")
	}
	if err := s.perms.CanMutate(ctx, actor, category.UserID); err != nil {
		return err
	}
	return s.store.DeleteCategory(ctx, id)
}
