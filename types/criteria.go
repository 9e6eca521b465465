/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"fmt"
	"math"
	"strings"
	"time"

	daoerrors "github.com/tomoncle/daokit/errors"
)

// MaxRows bounds Offset and Limit. Query builders keep both as 32-bit
// integers.
const MaxRows = math.MaxInt32

// SortOrder is one ORDER BY term.
type SortOrder struct {
	Field     string    `json:"field" yaml:"field"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// Asc returns an ascending sort term for field.
func Asc(field string) SortOrder { return SortOrder{Field: field, Direction: ASC} }

// Desc returns a descending sort term for field.
func Desc(field string) SortOrder { return SortOrder{Field: field, Direction: DESC} }

// SearchCriteria carries pagination, sort order, the total-count flag and an
// optional execution timeout for a paginated search.
//
// A nil Limit means every row from Offset onwards. A nil Timeout leaves the
// query unbounded.
type SearchCriteria struct {
	Limit   *int           `json:"limit,omitempty"`
	Offset  int            `json:"offset"`
	Sort    []SortOrder    `json:"sort,omitempty"`
	Total   bool           `json:"total"`
	Timeout *time.Duration `json:"timeout,omitempty"`
}

// CriteriaOption configures a SearchCriteria.
type CriteriaOption func(*SearchCriteria)

func WithLimit(n int) CriteriaOption {
	return func(c *SearchCriteria) { c.Limit = &n }
}

func WithOffset(n int) CriteriaOption {
	return func(c *SearchCriteria) { c.Offset = n }
}

// WithSort appends sort terms in the given order.
func WithSort(orders ...SortOrder) CriteriaOption {
	return func(c *SearchCriteria) { c.Sort = append(c.Sort, orders...) }
}

// WithTotal requests a total row count alongside the page.
func WithTotal() CriteriaOption {
	return func(c *SearchCriteria) { c.Total = true }
}

func WithTimeout(d time.Duration) CriteriaOption {
	return func(c *SearchCriteria) { c.Timeout = &d }
}

// NewSearchCriteria builds and validates a SearchCriteria.
func NewSearchCriteria(opts ...CriteriaOption) (*SearchCriteria, error) {
	c := &SearchCriteria{}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the criteria invariants. It returns an error matching
// errors.ErrInvalidArgument on the first violation.
func (c *SearchCriteria) Validate() error {
	if c == nil {
		return daoerrors.NewValidationError("criteria", "search criteria is required")
	}
	if c.Offset < 0 {
		return daoerrors.NewValidationError("offset", fmt.Sprintf("must not be negative, got %d", c.Offset))
	}
	if c.Offset > MaxRows {
		return daoerrors.NewValidationError("offset", fmt.Sprintf("must not exceed %d, got %d", MaxRows, c.Offset))
	}
	if c.Limit != nil && *c.Limit <= 0 {
		return daoerrors.NewValidationError("limit", fmt.Sprintf("must be greater than 0, got %d", *c.Limit))
	}
	if c.Limit != nil && *c.Limit > MaxRows {
		return daoerrors.NewValidationError("limit", fmt.Sprintf("must not exceed %d, got %d", MaxRows, *c.Limit))
	}
	if c.Timeout != nil && *c.Timeout <= 0 {
		return daoerrors.NewValidationError("timeout", fmt.Sprintf("must be positive, got %s", *c.Timeout))
	}
	for i, s := range c.Sort {
		if strings.TrimSpace(s.Field) == "" {
			return daoerrors.NewValidationError(fmt.Sprintf("sort[%d].field", i), "must not be empty")
		}
		if !s.Direction.IsValid() {
			return daoerrors.NewValidationError(fmt.Sprintf("sort[%d].direction", i), "must be ASC or DESC")
		}
	}
	return nil
}

// ParseSort parses terms like "price desc" or "name" (ascending by default).
func ParseSort(terms ...string) ([]SortOrder, error) {
	orders := make([]SortOrder, 0, len(terms))
	for _, term := range terms {
		parts := strings.Fields(term)
		switch len(parts) {
		case 1:
			orders = append(orders, Asc(parts[0]))
		case 2:
			dir, err := ParseDirection(parts[1])
			if err != nil {
				return nil, daoerrors.NewValidationError("sort", err.Error())
			}
			orders = append(orders, SortOrder{Field: parts[0], Direction: dir})
		default:
			return nil, daoerrors.NewValidationError("sort", fmt.Sprintf("malformed sort term %q", term))
		}
	}
	return orders, nil
}
