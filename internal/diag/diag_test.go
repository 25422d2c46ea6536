package diag

import "testing"

func TestFile_RecordsMessagesInOrder(t *testing.T) {
	f := NewFile("doc.md", nil)
	f.Info("rule-a", "test", "first")
	f.Warn("rule-b", "test", "second")
	f.Info("rule-a", "test", "third")

	msgs := f.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Text != "first" || msgs[2].Text != "third" {
		t.Errorf("expected messages in insertion order, got %+v", msgs)
	}
	if msgs[1].Severity != SeverityWarning {
		t.Errorf("expected severity %q, got %q", SeverityWarning, msgs[1].Severity)
	}
	if got := f.Count("rule-a"); got != 2 {
		t.Errorf("expected 2 rule-a messages, got %d", got)
	}
}

func TestFile_MessagesNeverNil(t *testing.T) {
	f := NewFile("empty.md", nil)
	if f.Messages() == nil {
		t.Error("expected non-nil messages slice")
	}
}

func TestFile_MessagesReturnsCopy(t *testing.T) {
	f := NewFile("doc.md", nil)
	f.Info("r", "s", "original")
	msgs := f.Messages()
	msgs[0].Text = "changed"
	if f.Messages()[0].Text != "original" {
		t.Error("expected Messages to return a copy")
	}
}
