package dom

import "testing"

func collectRecords(root *Element, opts Options) *[]Record {
	var records []Record
	obs := NewObserver(func(batch []Record) {
		records = append(records, batch...)
	})
	obs.Observe(root, opts)
	return &records
}

func TestAppendRemoveChildRecords(t *testing.T) {
	root := NewElement("div")
	records := collectRecords(root, Options{ChildList: true, Subtree: true})

	child := NewElement("p")
	root.AppendChild(child)
	root.RemoveChild(child)

	if len(*records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(*records))
	}
	if (*records)[0].Type != RecordChildList || len((*records)[0].Added) != 1 {
		t.Errorf("first record should report an added node: %+v", (*records)[0])
	}
	if len((*records)[1].Removed) != 1 {
		t.Errorf("second record should report a removed node: %+v", (*records)[1])
	}
}

func TestSubtreeObservation(t *testing.T) {
	root := NewElement("div")
	inner := NewElement("div")
	root.AppendChild(inner)

	records := collectRecords(root, Options{ChildList: true, Subtree: true})
	inner.AppendChild(NewElement("span"))

	if len(*records) != 1 {
		t.Fatalf("subtree observer should see nested mutation, got %d records", len(*records))
	}
}

func TestNonSubtreeObservationSkipsNested(t *testing.T) {
	root := NewElement("div")
	inner := NewElement("div")
	root.AppendChild(inner)

	records := collectRecords(root, Options{ChildList: true})
	inner.AppendChild(NewElement("span"))

	if len(*records) != 0 {
		t.Fatalf("non-subtree observer should not see nested mutation, got %d records", len(*records))
	}
}

func TestObserverOptionFiltering(t *testing.T) {
	root := NewElement("div")
	records := collectRecords(root, Options{Attributes: true, Subtree: true})

	root.AppendChild(NewElement("p")) // childList, filtered out
	root.SetAttribute("data-x", "1")  // attributes, delivered

	if len(*records) != 1 {
		t.Fatalf("expected only the attribute record, got %d", len(*records))
	}
	if (*records)[0].AttributeName != "data-x" {
		t.Errorf("unexpected attribute name %q", (*records)[0].AttributeName)
	}
}

func TestCharacterDataRecord(t *testing.T) {
	root := NewElement("div")
	text := NewEditable("p")
	root.AppendChild(text)

	records := collectRecords(root, Options{CharacterData: true, Subtree: true})
	text.SetText("hello")

	if len(*records) != 1 || (*records)[0].Type != RecordCharacterData {
		t.Fatalf("expected one characterData record, got %+v", *records)
	}
}

func TestNativeInputEmitsNoMutationRecord(t *testing.T) {
	root := NewElement("div")
	input := NewElement("input")
	root.AppendChild(input)

	records := collectRecords(root, Options{CharacterData: true, ChildList: true, Subtree: true})

	var inputEvents int
	input.AddEventListener(EventInput, func(Event) { inputEvents++ })

	input.SetText("typed")

	if len(*records) != 0 {
		t.Errorf("native input edits must not produce mutation records, got %+v", *records)
	}
	if inputEvents != 1 {
		t.Errorf("expected 1 input event, got %d", inputEvents)
	}
}

func TestDisconnectStopsDelivery(t *testing.T) {
	root := NewElement("div")
	var count int
	obs := NewObserver(func([]Record) { count++ })
	obs.Observe(root, Options{ChildList: true})

	root.AppendChild(NewElement("p"))
	obs.Disconnect()
	root.AppendChild(NewElement("p"))

	if count != 1 {
		t.Errorf("expected 1 delivery before disconnect, got %d", count)
	}
}

func TestMutationFreeRecord(t *testing.T) {
	root := NewElement("div")
	records := collectRecords(root, Options{ChildList: true, Subtree: true})

	decoration := NewElement("span")
	decoration.MarkMutationFree()
	root.AppendChild(decoration)

	content := NewElement("p")
	root.AppendChild(content)

	if len(*records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(*records))
	}
	if !(*records)[0].IsMutationFree() {
		t.Error("record for marked node should be mutation-free")
	}
	if (*records)[1].IsMutationFree() {
		t.Error("record for content node should not be mutation-free")
	}
}

func TestMutationFreeInheritsFromAncestor(t *testing.T) {
	wrapper := NewElement("div")
	wrapper.MarkMutationFree()
	child := NewElement("span")
	wrapper.AppendChild(child)

	if !child.IsMutationFree() {
		t.Error("descendants of a marked subtree are mutation-free")
	}
}

func TestEventListenerAddRemove(t *testing.T) {
	el := NewElement("p")
	var got int
	h := el.AddEventListener(EventFocus, func(Event) { got++ })

	el.Focus()
	h.Remove()
	el.Focus()

	if got != 1 {
		t.Errorf("expected 1 delivery, got %d", got)
	}
}

func TestFindEditables(t *testing.T) {
	root := NewElement("div")
	p := NewEditable("p")
	root.AppendChild(p)
	wrapper := NewElement("div")
	root.AppendChild(wrapper)
	input := NewElement("input")
	wrapper.AppendChild(input)
	root.AppendChild(NewElement("hr"))

	editables := FindEditables(root)
	if len(editables) != 2 {
		t.Fatalf("expected 2 editables, got %d", len(editables))
	}
	if editables[0] != p || editables[1] != input {
		t.Error("editables should be returned in document order")
	}
}

func TestClosestAndContains(t *testing.T) {
	root := NewElement("div")
	region := NewEditable("p")
	root.AppendChild(region)
	inner := NewElement("b")
	region.AppendChild(inner)

	got := inner.Closest(func(n *Element) bool { return n.ContentEditable() })
	if got != region {
		t.Errorf("Closest should resolve to the owning region")
	}
	if !root.Contains(inner) {
		t.Error("root should contain a nested descendant")
	}
	if region.Contains(root) {
		t.Error("a child does not contain its ancestor")
	}
}

func TestContainsMedia(t *testing.T) {
	root := NewElement("div")
	root.AppendChild(NewEditable("p"))
	if ContainsMedia(root) {
		t.Error("text-only subtree has no media")
	}

	root.AppendChild(NewElement("img"))
	if !ContainsMedia(root) {
		t.Error("img makes the subtree media-bearing")
	}
}

func TestTextContent(t *testing.T) {
	root := NewElement("div")
	a := NewEditable("p")
	a.SetText("hello ")
	b := NewEditable("p")
	b.SetText("world")
	root.AppendChild(a)
	root.AppendChild(b)

	if got := root.TextContent(); got != "hello world" {
		t.Errorf("TextContent = %q", got)
	}
}

func TestAppendChildReparents(t *testing.T) {
	a := NewElement("div")
	b := NewElement("div")
	child := NewElement("p")

	a.AppendChild(child)
	b.AppendChild(child)

	if len(a.Children()) != 0 {
		t.Error("child should be detached from the old parent")
	}
	if child.Parent() != b {
		t.Error("child should be attached to the new parent")
	}
}

func TestClassToggling(t *testing.T) {
	el := NewElement("div")
	el.AddClass("selected")
	if !el.HasClass("selected") {
		t.Error("class should be present after AddClass")
	}
	el.ToggleClass("selected", false)
	if el.HasClass("selected") {
		t.Error("class should be absent after toggle off")
	}
}
