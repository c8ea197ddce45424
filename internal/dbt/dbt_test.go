package dbt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnableModel(t *testing.T) {
	cfg := "{{ config(\n    enabled = false,\n    materialized='table'\n) }}"
	got := EnableModel(cfg)
	assert.Contains(t, got, "enabled = true")
	assert.NotContains(t, got, "false")
}

func TestEnableModelTightSpacing(t *testing.T) {
	assert.Equal(t, "{{ config(enabled = true) }}",
		EnableModel("{{ config(enabled=false) }}"))
}

func TestEnableModelAbsentParameter(t *testing.T) {
	cfg := "{{ config(materialized='table') }}"
	assert.Equal(t, cfg, EnableModel(cfg))
}

func TestAddDropHooks(t *testing.T) {
	cfg := "{{ config(\n    post_hook = [\n        'vacuum'\n    ]\n) }}"
	got, err := AddDropHooks(cfg, []string{"final_a", "final_b"})
	require.NoError(t, err)
	assert.Contains(t, got, `'drop table {{ ref("final_a") }}',`)
	assert.Contains(t, got, `'drop table {{ ref("final_b") }}',`)
	// The existing hook survives after the injected ones.
	assert.Contains(t, got, "'vacuum'")
	assert.Less(t, strings.Index(got, "final_a"), strings.Index(got, "'vacuum'"))
}

func TestAddDropHooksPreservesSpacing(t *testing.T) {
	cfg := "{{ config(post_hook = [\n      'x'\n]) }}"
	got, err := AddDropHooks(cfg, []string{"m"})
	require.NoError(t, err)
	assert.Contains(t, got, "[\n      'drop table")
}

func TestAddDropHooksMissingList(t *testing.T) {
	_, err := AddDropHooks("{{ config(enabled = true) }}", []string{"m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post_hook")
}

func TestRef(t *testing.T) {
	assert.Equal(t, ` {{ ref("orders") }}`, Ref("orders"))
}

func TestRewriteRefs(t *testing.T) {
	body := "select *\nfrom orders\njoin totals on totals.id = orders.id"
	got := RewriteRefs(body, []Rename{
		{Old: "orders", New: "final_orders"},
		{Old: "totals", New: "final_totals"},
	})
	assert.Contains(t, got, `from {{ ref("final_orders") }}`)
	assert.Contains(t, got, `join {{ ref("final_totals") }}`)
	// Column qualifiers are not references and stay untouched.
	assert.Contains(t, got, "totals.id = orders.id")
}

func TestRewriteRefsWordBounded(t *testing.T) {
	body := "select * from orders_archive"
	got := RewriteRefs(body, []Rename{{Old: "orders", New: "final_orders"}})
	assert.Equal(t, body, got)
}

func TestRewriteRefsKeywordCaseInsensitive(t *testing.T) {
	body := "select * FROM orders"
	got := RewriteRefs(body, []Rename{{Old: "orders", New: "final_orders"}})
	assert.Equal(t, `select * FROM {{ ref("final_orders") }}`, got)
}
