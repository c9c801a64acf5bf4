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

// strategy_teacherstudent.go adapts the teacher's TeacherStudentOrchestrator
// (pkg/collaboration/teacher_student.go) into an alternate per-todo fan-out
// strategy. The teacher's own version is a near-placeholder; this fills it
// out into the sequential exchange its fields (Steps, ConceptsMastered,
// ImprovementAreas) imply but never populate.
package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/loomware/warp/internal/events"
)

// RunTeacherStudent runs the first agent as teacher and every remaining
// agent as a student: the teacher explains the todo, each student restates
// and applies the explanation independently, and the teacher reviews the
// restatements for gaps. It requires at least 2 agents (one teacher, one
// or more students); students run one after another in a single round.
func RunTeacherStudent(ctx context.Context, todoText string, agents []Agent, emit func(events.Event)) (string, error) {
	if len(agents) < 2 {
		return "", fmt.Errorf("scheduler: teacher/student requires at least 2 agents, got %d", len(agents))
	}

	teacher := agents[0]
	students := agents[1:]

	participants := make([]string, len(agents))
	for i, a := range agents {
		participants[i] = a.ID()
	}
	collab := NewCollaborationContext(participants)

	emit(events.Event{Type: events.TypePlanning, AgentID: teacher.ID(), Message: "teacher explaining"})
	explanation, err := teacher.Run(ctx, teachingPrompt(todoText), collab)
	if err != nil {
		return "", fmt.Errorf("scheduler: teacher %s failed: %w", teacher.ID(), err)
	}
	collab.Log(teacher.ID(), explanation)
	collab.Share("teacher:explanation", explanation)

	restatements := make(map[string]string, len(students))
	for _, student := range students {
		emit(events.Event{Type: events.TypeExecuting, AgentID: student.ID(), Message: "student applying explanation"})
		restated, err := student.Run(ctx, studentPrompt(todoText, explanation), collab)
		if err != nil {
			emit(events.Event{Type: events.TypeError, AgentID: student.ID(), Message: "student failed: " + err.Error()})
			continue
		}
		collab.Log(student.ID(), restated)
		restatements[student.ID()] = restated
	}

	if len(restatements) == 0 {
		return "", fmt.Errorf("scheduler: every student failed under teacher %s", teacher.ID())
	}

	emit(events.Event{Type: events.TypePlanning, AgentID: teacher.ID(), Message: "teacher reviewing restatements"})
	review, err := teacher.Run(ctx, reviewPrompt(todoText, restatements), collab)
	if err != nil {
		review = "(teacher review unavailable: " + err.Error() + ")"
	}

	return mergeTeacherStudentSession(todoText, explanation, restatements, review), nil
}

func teachingPrompt(todoText string) string {
	return fmt.Sprintf("You are the teacher. Explain how to approach this todo so a less experienced agent could execute it: %s", todoText)
}

func studentPrompt(todoText, explanation string) string {
	return fmt.Sprintf("Todo: %s\n\nYour teacher explained:\n%s\n\nRestate the approach in your own words, then apply it and produce your output.", todoText, explanation)
}

func reviewPrompt(todoText string, restatements map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Todo: %s\n\nReview each student's restatement for gaps or misunderstandings:\n", todoText)
	for _, id := range sortedKeys(restatements) {
		fmt.Fprintf(&b, "- %s: %s\n", id, restatements[id])
	}
	b.WriteString("\nList concepts the students mastered and areas needing improvement.")
	return b.String()
}

func mergeTeacherStudentSession(todoText, explanation string, restatements map[string]string, review string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Summary\nTeacher/student session for %q with %d student(s).\n\n", todoText, len(restatements))
	b.WriteString("## Key Findings\n")
	fmt.Fprintf(&b, "- Teacher's explanation: %s\n", truncateForSummary(explanation))
	for _, id := range sortedKeys(restatements) {
		fmt.Fprintf(&b, "- %s's restatement: %s\n", id, truncateForSummary(restatements[id]))
	}
	b.WriteString("\n## Implementation Steps\n(derived from student restatements above)\n\n")
	b.WriteString("## Code Changes\n(see per-student output)\n\n")
	fmt.Fprintf(&b, "## Risks/Considerations\nTeacher review:\n%s\n\n", review)
	b.WriteString("## Next Actions\nAddress any gaps the teacher's review identified.\n")
	return b.String()
}
