package ecs

import (
	"reflect"
	"testing"
)

// 测试组件类型定义
type testTransformComponent struct {
	X, Y, Rotation float64
}

type testOpacityComponent struct {
	Opacity float64
}

func TestCreateEntity(t *testing.T) {
	em := NewEntityManager()
	id1 := em.CreateEntity()
	id2 := em.CreateEntity()

	if id1 == id2 {
		t.Error("Entity IDs should be unique")
	}

	// ID从1开始,0保留为无效ID
	if id1 != 1 {
		t.Errorf("First entity ID should be 1, got %d", id1)
	}
	if id2 <= id1 {
		t.Errorf("Entity IDs should increase, got %d after %d", id2, id1)
	}
	if em.EntityCount() != 2 {
		t.Errorf("EntityCount: got %d, want 2", em.EntityCount())
	}
}

func TestAddAndGetComponent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	if !em.AddComponent(id, &testTransformComponent{X: 50, Y: -25, Rotation: 30}) {
		t.Fatal("AddComponent on a live entity should succeed")
	}

	comp, found := em.GetComponent(id, reflect.TypeOf(&testTransformComponent{}))
	if !found {
		t.Fatal("Component should be found")
	}
	tr := comp.(*testTransformComponent)
	if tr.X != 50 || tr.Y != -25 || tr.Rotation != 30 {
		t.Errorf("Component data mismatch, got %+v", *tr)
	}
}

func TestAddComponentToUnknownEntity(t *testing.T) {
	em := NewEntityManager()
	if em.AddComponent(EntityID(42), &testOpacityComponent{}) {
		t.Error("AddComponent on an unknown entity should report false")
	}
}

func TestGenericGetComponent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	em.AddComponent(id, &testOpacityComponent{Opacity: 0.75})

	op, ok := GetComponent[*testOpacityComponent](em, id)
	if !ok {
		t.Fatal("GetComponent[*testOpacityComponent] should find the component")
	}
	if op.Opacity != 0.75 {
		t.Errorf("Opacity: got %v, want 0.75", op.Opacity)
	}

	if _, ok := GetComponent[*testTransformComponent](em, id); ok {
		t.Error("GetComponent should not find a component that was never added")
	}
	if !HasComponent[*testOpacityComponent](em, id) {
		t.Error("HasComponent[*testOpacityComponent] should be true")
	}
}

func TestDestroyEntityIsDeferred(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	em.AddComponent(id, &testTransformComponent{})

	if !em.DestroyEntity(id) {
		t.Fatal("first DestroyEntity should mark the entity")
	}

	// 清理前实体仍存在
	if !em.IsAlive(id) || !em.IsMarked(id) {
		t.Error("Entity should still exist (and be marked) before cleanup")
	}

	removed := em.RemoveMarkedEntities()
	if len(removed) != 1 || removed[0] != id {
		t.Errorf("RemoveMarkedEntities: got %v, want [%d]", removed, id)
	}
	if em.IsAlive(id) {
		t.Error("Entity should be removed after cleanup")
	}
	if em.IsMarked(id) {
		t.Error("Removed entity should no longer be marked")
	}
}

func TestDestroyEntityExactlyOnce(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	if !em.DestroyEntity(id) {
		t.Fatal("first DestroyEntity should succeed")
	}
	if em.DestroyEntity(id) {
		t.Error("second DestroyEntity in the same frame should be a no-op")
	}

	removed := em.RemoveMarkedEntities()
	if len(removed) != 1 {
		t.Errorf("entity should be removed exactly once, got %v", removed)
	}

	if em.DestroyEntity(id) {
		t.Error("DestroyEntity on a removed entity should report false")
	}
	if removed := em.RemoveMarkedEntities(); removed != nil {
		t.Errorf("nothing should be left to remove, got %v", removed)
	}
}

func TestGetEntitiesWithIsOrderedByID(t *testing.T) {
	em := NewEntityManager()

	ids := make([]EntityID, 0, 20)
	for i := 0; i < 20; i++ {
		id := em.CreateEntity()
		em.AddComponent(id, &testTransformComponent{})
		ids = append(ids, id)
	}
	// 中间插入一个只有透明度组件的实体
	other := em.CreateEntity()
	em.AddComponent(other, &testOpacityComponent{})

	got := GetEntitiesWith1[*testTransformComponent](em)
	if len(got) != len(ids) {
		t.Fatalf("Expected %d entities, got %d", len(ids), len(got))
	}
	for i := range ids {
		if got[i] != ids[i] {
			t.Fatalf("entities should be ordered oldest first, got %v", got)
		}
	}
}

func TestGetEntitiesWith2(t *testing.T) {
	em := NewEntityManager()

	id1 := em.CreateEntity()
	em.AddComponent(id1, &testTransformComponent{})
	em.AddComponent(id1, &testOpacityComponent{})

	id2 := em.CreateEntity()
	em.AddComponent(id2, &testTransformComponent{})

	both := GetEntitiesWith2[*testTransformComponent, *testOpacityComponent](em)
	if len(both) != 1 || both[0] != id1 {
		t.Errorf("Query should return only id1, got %v", both)
	}
}

func TestDestroyMultipleEntities(t *testing.T) {
	em := NewEntityManager()

	id1 := em.CreateEntity()
	id2 := em.CreateEntity()
	id3 := em.CreateEntity()

	em.DestroyEntity(id1)
	em.DestroyEntity(id3)
	em.RemoveMarkedEntities()

	if em.IsAlive(id1) || em.IsAlive(id3) {
		t.Error("id1 and id3 should be removed")
	}
	if !em.IsAlive(id2) {
		t.Error("id2 should still exist")
	}
	if em.EntityCount() != 1 {
		t.Errorf("EntityCount: got %d, want 1", em.EntityCount())
	}
}
