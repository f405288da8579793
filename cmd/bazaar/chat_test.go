package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"bazaar/internal/api"
	"bazaar/internal/api/apitest"
	"bazaar/internal/config"
	"bazaar/internal/domain"
	"bazaar/internal/services"
)

func TestRunChatPrintsHistoryAndSendsLines(t *testing.T) {
	be := apitest.New()
	defer be.Close()
	tok := be.AddUser(domain.User{ID: "alice", Name: "Alice", Email: "alice@bazaar.test"}, "Secret123")
	be.AddUser(domain.User{ID: "sam", Name: "Sam", Email: "sam@bazaar.test", Role: domain.RoleSeller}, "Secret123")
	be.AddConversation(domain.Conversation{ID: "c1", Participants: []domain.Participant{{ID: "alice"}, {ID: "sam"}}})
	be.PostMessage("c1", "sam", "Parcel left today")

	client := api.New(be.URL(), 5*time.Second)
	var out bytes.Buffer
	cfg := config.Config{PollInterval: time.Hour}
	err := runChat(context.Background(), services.Source(client.Conversations, tok), "c1", cfg, strings.NewReader("thanks!\n   \n"), &out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Sam: Parcel left today") {
		t.Fatalf("history not printed: %q", out.String())
	}
	if !strings.Contains(out.String(), "! message is empty") {
		t.Fatalf("blank line not rejected: %q", out.String())
	}
	if n := be.Hits("POST /conversations/:id/messages"); n != 1 {
		t.Fatalf("expected one send, got %d", n)
	}
}

func TestRunChatReportsOpenFailure(t *testing.T) {
	be := apitest.New()
	defer be.Close()
	client := api.New(be.URL(), 5*time.Second)
	err := runChat(context.Background(), services.Source(client.Conversations, "tok-nobody"), "c1", config.Config{PollInterval: time.Hour}, strings.NewReader(""), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "Please log in") {
		t.Fatalf("expected backend message in error, got %v", err)
	}
}

func TestReadLinesStopsWhenDone(t *testing.T) {
	lines := make(chan string)
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		readLines(strings.NewReader("one\ntwo\n"), lines, done)
		close(exited)
	}()
	if got := <-lines; got != "one" {
		t.Fatalf("first line=%q", got)
	}
	// nobody reads "two"; closing done must still release the reader
	close(done)
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("reader blocked after the chat ended")
	}
}

