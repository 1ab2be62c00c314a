package domain

import (
	"testing"
	"time"
)

func TestCategoriesFor(t *testing.T) {
	t.Parallel()

	income := CategoriesFor(TransactionTypeIncome)
	if len(income) == 0 || income[0] != "Salário" {
		t.Fatalf("unexpected income catalog head: %v", income)
	}

	expense := CategoriesFor(TransactionTypeExpense)
	if len(expense) == 0 || expense[0] != "Aluguel" {
		t.Fatalf("unexpected expense catalog head: %v", expense)
	}

	if got := CategoriesFor(TransactionType("other")); len(got) != 0 {
		t.Fatalf("expected empty catalog for unknown type, got %v", got)
	}
}

func TestCategoriesFor_NoDuplicates(t *testing.T) {
	t.Parallel()

	for _, typ := range []TransactionType{TransactionTypeIncome, TransactionTypeExpense} {
		seen := make(map[string]bool)
		for _, c := range CategoriesFor(typ) {
			if seen[c] {
				t.Fatalf("%s catalog repeats %q", typ, c)
			}
			seen[c] = true
		}
	}
}

func TestCategoriesFor_ReturnsCopy(t *testing.T) {
	t.Parallel()

	first := CategoriesFor(TransactionTypeIncome)
	first[0] = "changed"

	if CategoriesFor(TransactionTypeIncome)[0] != "Salário" {
		t.Fatal("catalog was modified through a returned slice")
	}
}

func TestIsCatalogued(t *testing.T) {
	t.Parallel()

	if !IsCatalogued(TransactionTypeExpense, "Supermercado") {
		t.Fatal("expected Supermercado in the expense catalog")
	}
	if IsCatalogued(TransactionTypeIncome, "Supermercado") {
		t.Fatal("Supermercado is not an income category")
	}
	if IsCatalogued(TransactionTypeExpense, "Transporte") {
		t.Fatal("Transporte is stored data, not a catalog label")
	}
}

func TestAvailableCategories_ObservedInFirstSeenOrder(t *testing.T) {
	t.Parallel()

	snapshot := []*Transaction{
		tx("1", TransactionTypeExpense, 1, "Transporte", time.Time{}),
		tx("2", TransactionTypeIncome, 1, "Salário", time.Time{}),
		tx("3", TransactionTypeExpense, 1, "", time.Time{}),
		tx("4", TransactionTypeExpense, 1, "Transporte", time.Time{}),
		tx("5", TransactionTypeExpense, 1, "Categoria Antiga", time.Time{}),
	}

	got := AvailableCategories(snapshot, FilterAll)
	want := []string{"Transporte", "Salário", "Categoria Antiga"}
	if !equalIDs(got, want) {
		t.Fatalf("AvailableCategories() = %v, want %v", got, want)
	}

	if got := AvailableCategories(nil, ""); len(got) != 0 {
		t.Fatalf("expected no options for an empty snapshot, got %v", got)
	}
}
