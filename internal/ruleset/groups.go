package ruleset

import (
	"fmt"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

// BindGroups pairs the items of the rules section into table groups.
//
// An item with parameters opens a group for its table. Its own expectations
// belong to that group; an expectations-only item joins the group opened by
// the nearest preceding item, so
//
//	- parameters: {table_name: orders}
//	- expectations: [...]
//
// validates orders. An expectations item with no preceding table is an error.
// Groups are returned in declaration order.
func BindGroups(rules []core.GenericRule) ([]core.RuleGroup, error) {
	var groups []core.RuleGroup
	current := -1

	for i, item := range rules {
		if item.Parameters != nil {
			groups = append(groups, core.RuleGroup{
				Table:    item.Parameters.TableName,
				Database: item.Parameters.Database,
			})
			current = len(groups) - 1
		}
		if len(item.Expectations) == 0 {
			continue
		}
		if current < 0 {
			return nil, &DocumentError{
				Path:    fmt.Sprintf("%s[%d].expectations", core.SectionRules, i),
				Message: "expectations have no table: declare parameters.table_name in this item or a preceding one",
			}
		}
		groups[current].Expectations = append(groups[current].Expectations, item.Expectations...)
	}

	return groups, nil
}
