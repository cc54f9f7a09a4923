package cart

import (
	"testing"

	"github.com/aurix-store/internal/models"
)

func money(s string) models.Money {
	var m models.Money
	if err := m.UnmarshalJSON([]byte(`"` + s + `"`)); err != nil {
		panic(err)
	}
	return m
}

func TestAddItemCoalescesSameProductAndVariant(t *testing.T) {
	s := NewStore()

	if _, err := s.AddItem(1, "sku-1", money("29.99"), 2, nil); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	snap, err := s.AddItem(1, "sku-1", money("29.99"), 1, nil)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if len(snap.Items) != 1 {
		t.Fatalf("expected single line item, got %d", len(snap.Items))
	}
	if snap.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", snap.Items[0].Quantity)
	}
	if got := snap.Total.String(); got != "89.97" {
		t.Fatalf("expected total 89.97, got %s", got)
	}
	if snap.ItemCount != 3 {
		t.Fatalf("expected item count 3, got %d", snap.ItemCount)
	}
}

func TestAddItemVariantsStayDistinct(t *testing.T) {
	s := NewStore()

	if _, err := s.AddItem(2, "sku-2", money("10.00"), 1, models.Variant{"size": "M"}); err != nil {
		t.Fatalf("add M failed: %v", err)
	}
	snap, err := s.AddItem(2, "sku-2", money("10.00"), 1, models.Variant{"size": "L"})
	if err != nil {
		t.Fatalf("add L failed: %v", err)
	}

	if len(snap.Items) != 2 {
		t.Fatalf("expected two distinct line items, got %d", len(snap.Items))
	}
	if got := snap.Total.String(); got != "20.00" {
		t.Fatalf("expected total 20.00, got %s", got)
	}
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	s := NewStore()
	if _, err := s.AddItem(1, "sku-1", money("5.00"), 2, nil); err != nil {
		t.Fatalf("seed add failed: %v", err)
	}

	if _, err := s.AddItem(1, "sku-1", money("5.00"), 0, nil); err != ErrQuantityInvalid {
		t.Fatalf("expected ErrQuantityInvalid, got %v", err)
	}
	if _, err := s.AddItem(1, "sku-1", money("5.00"), -3, nil); err != ErrQuantityInvalid {
		t.Fatalf("expected ErrQuantityInvalid, got %v", err)
	}
	if _, err := s.AddItem(3, "sku-3", money("-1.00"), 1, nil); err != ErrUnitPriceInvalid {
		t.Fatalf("expected ErrUnitPriceInvalid, got %v", err)
	}

	// 校验失败不得触碰已有状态
	snap := s.Snapshot()
	if len(snap.Items) != 1 || snap.Items[0].Quantity != 2 {
		t.Fatalf("cart state changed after rejected input: %+v", snap)
	}
}

func TestUpdateQuantityZeroEqualsRemove(t *testing.T) {
	a := NewStore()
	b := NewStore()
	for _, s := range []*Store{a, b} {
		if _, err := s.AddItem(1, "sku-1", money("29.99"), 2, nil); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	snapA, err := a.UpdateQuantity(1, nil, 0)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	snapB := b.RemoveItem(1, nil)

	if len(snapA.Items) != 0 || len(snapB.Items) != 0 {
		t.Fatalf("expected both carts empty: %d vs %d items", len(snapA.Items), len(snapB.Items))
	}
	if snapA.Total.String() != snapB.Total.String() {
		t.Fatalf("totals diverge: %s vs %s", snapA.Total, snapB.Total)
	}
	if snapA.Total.String() != "0.00" {
		t.Fatalf("expected zero total, got %s", snapA.Total)
	}
}

func TestRemoveAbsentIsIdempotent(t *testing.T) {
	s := NewStore()
	if _, err := s.AddItem(1, "sku-1", money("29.99"), 1, nil); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	before := s.Snapshot()
	after := s.RemoveItem(99, nil)
	if len(after.Items) != len(before.Items) || after.Total.String() != before.Total.String() {
		t.Fatalf("removing absent item altered cart: %+v -> %+v", before, after)
	}
	// 同商品不同规格也算不存在
	after = s.RemoveItem(1, models.Variant{"size": "M"})
	if len(after.Items) != 1 {
		t.Fatalf("variant mismatch removal must not touch the item")
	}
}

func TestTotalRecomputedAfterRemoval(t *testing.T) {
	s := NewStore()
	if _, err := s.AddItem(1, "a", money("10.00"), 1, nil); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if _, err := s.AddItem(2, "b", money("5.50"), 2, nil); err != nil {
		t.Fatalf("add b: %v", err)
	}
	if got := s.Total().String(); got != "21.00" {
		t.Fatalf("expected 21.00, got %s", got)
	}

	s.RemoveItem(2, nil)
	if got := s.Total().String(); got != "10.00" {
		t.Fatalf("expected 10.00 after removal, got %s", got)
	}
	s.Clear()
	if got := s.Total().String(); got != "0.00" {
		t.Fatalf("expected 0.00 after clear, got %s", got)
	}
}

func TestInsertionOrderPreserved(t *testing.T) {
	s := NewStore()
	ids := []uint{5, 3, 9, 1}
	for _, id := range ids {
		if _, err := s.AddItem(id, "p", money("1.00"), 1, nil); err != nil {
			t.Fatalf("add %d: %v", id, err)
		}
	}
	// 中段删除后其余行项保持相对顺序
	s.RemoveItem(3, nil)

	items := s.Items()
	want := []uint{5, 9, 1}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, id := range want {
		if items[i].ProductID != id {
			t.Fatalf("position %d: expected product %d, got %d", i, id, items[i].ProductID)
		}
	}

	// 删除后再加购落到末尾
	if _, err := s.AddItem(3, "p", money("1.00"), 1, nil); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	items = s.Items()
	if items[len(items)-1].ProductID != 3 {
		t.Fatalf("re-added item should append at tail")
	}
}

func TestSubscribeNotifiedWithSnapshot(t *testing.T) {
	s := NewStore()
	var seen []Snapshot
	s.Subscribe(func(snap Snapshot) {
		seen = append(seen, snap)
	})

	if _, err := s.AddItem(1, "sku-1", money("2.00"), 1, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	s.RemoveItem(1, nil)

	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
	if seen[0].ItemCount != 1 || seen[1].ItemCount != 0 {
		t.Fatalf("notifications carry wrong snapshots: %+v", seen)
	}
}

func TestForceQuantityClampsAndRemoves(t *testing.T) {
	s := NewStore()
	if _, err := s.AddItem(1, "sku-1", money("4.00"), 5, nil); err != nil {
		t.Fatalf("add: %v", err)
	}

	snap := s.ForceQuantity(1, nil, 2)
	if snap.Items[0].Quantity != 2 {
		t.Fatalf("expected clamped quantity 2, got %d", snap.Items[0].Quantity)
	}
	snap = s.ForceQuantity(1, nil, 0)
	if len(snap.Items) != 0 {
		t.Fatalf("force to zero must remove the line item")
	}
}

func TestSnapshotMutationDoesNotLeak(t *testing.T) {
	s := NewStore()
	if _, err := s.AddItem(1, "sku-1", money("4.00"), 1, models.Variant{"size": "M"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	snap := s.Snapshot()
	snap.Items[0].Quantity = 99
	snap.Items[0].Variant["size"] = "XL"

	fresh := s.Snapshot()
	if fresh.Items[0].Quantity != 1 {
		t.Fatalf("mutating a snapshot leaked into the store")
	}
	if fresh.Items[0].Variant["size"] != "M" {
		t.Fatalf("mutating snapshot variant leaked into the store")
	}
}
