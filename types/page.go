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

// QueryFilter describes a WHERE clause schema and its argument values.
type QueryFilter struct {
	Schema string
	Args   []interface{}
}

// NewQueryFilter creates a new query filter with schema and args.
func NewQueryFilter(schema string, args ...interface{}) *QueryFilter {
	return &QueryFilter{schema, args}
}

// PageRequest is a page-number view over SearchCriteria.
type PageRequest struct {
	page     int
	pageSize int
	orders   []SortOrder
	total    bool
}

func (p *PageRequest) GetPageSize() int {
	if p.pageSize < 1 {
		p.pageSize = 10
	}
	return p.pageSize
}

func (p *PageRequest) GetPage() int {
	if p.page < 1 {
		p.page = 1
	}
	return p.page
}

func (p *PageRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

func (p *PageRequest) GetOrders() []SortOrder {
	return p.orders
}

// Criteria converts the page request into search criteria.
func (p *PageRequest) Criteria() *SearchCriteria {
	size := p.GetPageSize()
	return &SearchCriteria{
		Limit:  &size,
		Offset: p.GetOffset(),
		Sort:   p.orders,
		Total:  p.total,
	}
}

// NewPageRequest constructs a PageRequest that also asks for the total count.
// Pages are 1-based; page < 1 means 1 and pageSize < 1 means 10.
func NewPageRequest(page int, pageSize int, orders ...SortOrder) *PageRequest {
	return &PageRequest{page: page, pageSize: pageSize, orders: orders, total: true}
}

// NewPageRequestWithoutTotal constructs a PageRequest that skips the count query.
func NewPageRequestWithoutTotal(page int, pageSize int, orders ...SortOrder) *PageRequest {
	return &PageRequest{page: page, pageSize: pageSize, orders: orders}
}

// PaginatedList holds one page of entities. Total is nil unless the criteria
// asked for it, so "not requested" is distinguishable from "zero rows".
type PaginatedList[E any] struct {
	Items  []E  `json:"items"`
	Total  *int `json:"total,omitempty"`
	Offset int  `json:"offset"`
	Limit  *int `json:"limit,omitempty"`
}

// NewPaginatedList constructs an empty page for the given criteria.
func NewPaginatedList[E any](criteria *SearchCriteria) *PaginatedList[E] {
	return &PaginatedList[E]{
		Items:  make([]E, 0),
		Offset: criteria.Offset,
		Limit:  criteria.Limit,
	}
}

// HasTotal reports whether a total count was computed.
func (p *PaginatedList[E]) HasTotal() bool { return p.Total != nil }

// Page returns the 1-based page number implied by offset and limit, or 1 when
// there is no limit.
func (p *PaginatedList[E]) Page() int {
	if p.Limit == nil || *p.Limit <= 0 {
		return 1
	}
	return p.Offset / *p.Limit + 1
}
