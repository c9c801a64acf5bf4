// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/loomware/warp/internal/events"
)

func TestRunTeacherStudent_RequiresAtLeastTwoAgents(t *testing.T) {
	_, err := RunTeacherStudent(context.Background(), "topic", []Agent{&fakeAgent{id: "solo"}}, func(events.Event) {})
	if err == nil {
		t.Fatal("expected error with fewer than 2 agents")
	}
}

func TestRunTeacherStudent_IncludesExplanationRestatementAndReview(t *testing.T) {
	agents := []Agent{
		&fakeAgent{id: "mentor", out: "start with the data model"},
		&fakeAgent{id: "learner", out: "I will define the schema first"},
	}
	out, err := RunTeacherStudent(context.Background(), "design the database", agents, func(events.Event) {})
	if err != nil {
		t.Fatalf("RunTeacherStudent: %v", err)
	}
	if !strings.Contains(out, "start with the data model") {
		t.Errorf("expected teacher explanation present:\n%s", out)
	}
	if !strings.Contains(out, "I will define the schema first") {
		t.Errorf("expected student restatement present:\n%s", out)
	}
}

func TestRunTeacherStudent_FailedTeacherAborts(t *testing.T) {
	agents := []Agent{
		&fakeAgent{id: "mentor", err: fmt.Errorf("teacher offline")},
		&fakeAgent{id: "learner", out: "..."},
	}
	_, err := RunTeacherStudent(context.Background(), "topic", agents, func(events.Event) {})
	if err == nil {
		t.Fatal("expected error when teacher fails")
	}
}

func TestRunTeacherStudent_AllStudentsFailingIsAnError(t *testing.T) {
	agents := []Agent{
		&fakeAgent{id: "mentor", out: "explanation"},
		&fakeAgent{id: "learner", err: fmt.Errorf("student offline")},
	}
	_, err := RunTeacherStudent(context.Background(), "topic", agents, func(events.Event) {})
	if err == nil {
		t.Fatal("expected error when every student fails")
	}
}
