// Package seed fills an empty store with sample notes and tasks dated
// relative to the current day.
package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Joseda-hg/mindtask/internal/db"
)

type SampleNote struct {
	Input db.NoteInput
	// Offset from now at which the note was written.
	Age time.Duration
}

type SampleTask struct {
	Input db.TaskInput
	Age   time.Duration
	// DueIn is in days from today; nil leaves the task undated.
	DueIn *int
}

// Load inserts the sample data when the store holds no notes and no tasks.
// It reports whether anything was inserted.
func Load(ctx context.Context, store *db.Store, now time.Time, logger *zap.Logger) (bool, error) {
	notes, err := store.ListNotes(ctx)
	if err != nil {
		return false, err
	}
	tasks, err := store.ListTasks(ctx)
	if err != nil {
		return false, err
	}
	if len(notes) > 0 || len(tasks) > 0 {
		logger.Debug("store not empty, skipping seed", zap.Int("notes", len(notes)), zap.Int("tasks", len(tasks)))
		return false, nil
	}

	for _, sample := range Notes() {
		at := now.Add(-sample.Age)
		if _, err := store.WithClock(fixed(at)).CreateNote(ctx, sample.Input); err != nil {
			return false, fmt.Errorf("seed note %q: %w", sample.Input.Title, err)
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, sample := range Tasks() {
		input := sample.Input
		if sample.DueIn != nil {
			due := today.AddDate(0, 0, *sample.DueIn).Add(17 * time.Hour)
			input.DueAt = &due
		}
		at := now.Add(-sample.Age)
		if _, err := store.WithClock(fixed(at)).CreateTask(ctx, input); err != nil {
			return false, fmt.Errorf("seed task %q: %w", input.Title, err)
		}
	}

	logger.Info("seeded sample data", zap.Int("notes", len(Notes())), zap.Int("tasks", len(Tasks())))
	return true, nil
}

func fixed(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func days(n float64) time.Duration {
	return time.Duration(n * float64(24*time.Hour))
}

func intensity(v float64) *float64 {
	return &v
}

func dueIn(days int) *int {
	return &days
}

func Notes() []SampleNote {
	return []SampleNote{
		{
			Age: days(0.1),
			Input: db.NoteInput{
				Title:      "Morning Reflection",
				Body:       "Started the day with meditation and journaling. Feeling centered and ready to tackle new challenges. The sunrise was particularly beautiful today, reminding me to appreciate small moments of peace. I've been practicing mindfulness for three weeks now and can already notice improvements in my focus and emotional regulation.",
				Tags:       []string{"mindfulness", "morning", "meditation"},
				Emotion:    "calm",
				Intensity:  intensity(0.7),
				Bookmarked: true,
			},
		},
		{
			Age: days(1),
			Input: db.NoteInput{
				Title:     "Project Deadline Stress",
				Body:      "The client presentation is tomorrow and I'm feeling overwhelmed. Still have three slides to finish and the data analysis isn't complete. Need to prioritize and focus on what's most important. Taking deep breaths and breaking this down into smaller tasks. Maybe I should ask Sarah for help with the charts.",
				Tags:      []string{"work", "deadline", "stress"},
				Emotion:   "anxious",
				Intensity: intensity(0.8),
			},
		},
		{
			Age: days(2),
			Input: db.NoteInput{
				Title:      "Weekend Adventure Plans",
				Body:       "Excited about the hiking trip this weekend! Finally booked the cabin and mapped out the trail. Can't wait to disconnect from technology and reconnect with nature. Planning to bring my camera to capture the autumn colors. This is exactly what I need after a busy week at work.",
				Tags:       []string{"adventure", "hiking", "weekend"},
				Emotion:    "happy",
				Intensity:  intensity(0.9),
				Bookmarked: true,
			},
		},
		{
			Age: days(3),
			Input: db.NoteInput{
				Title:     "Learning New Skills",
				Body:      "Started the React course today and I'm amazed by how much there is to learn. The component-based architecture makes so much sense. Feeling motivated to build something meaningful. Already have ideas for a personal project that could help with my daily productivity. The instructor's teaching style is engaging and the examples are practical.",
				Tags:      []string{"learning", "react", "programming"},
				Emotion:   "motivated",
				Intensity: intensity(0.85),
			},
		},
		{
			Age: days(4),
			Input: db.NoteInput{
				Title:      "Family Dinner Thoughts",
				Body:       "Had dinner with parents tonight. Mom's cooking always brings back childhood memories. Grateful for these moments together, especially as they're getting older. We talked about old family trips and shared stories I hadn't heard before. Dad seems more reflective lately, sharing wisdom about life and relationships.",
				Tags:       []string{"family", "gratitude", "memories"},
				Emotion:    "happy",
				Intensity:  intensity(0.6),
				Bookmarked: true,
			},
		},
		{
			Age: days(5),
			Input: db.NoteInput{
				Title:     "Creative Block",
				Body:      "Struggling with the design project today. Nothing feels right and I keep second-guessing every decision. Maybe I need to step away and come back with fresh eyes tomorrow. Sometimes the best ideas come when you're not actively trying to force them. Going for a walk might help clear my head.",
				Tags:      []string{"creativity", "design", "block"},
				Emotion:   "stressed",
				Intensity: intensity(0.7),
			},
		},
		{
			Age: days(6),
			Input: db.NoteInput{
				Title:      "Breakthrough Moment",
				Body:       "Finally solved the algorithm problem I've been working on for days! The solution was simpler than I thought. Feeling accomplished and ready to tackle the next challenge. This reminds me why I love programming - the satisfaction of breaking down complex problems into elegant solutions. Time to celebrate with some good coffee.",
				Tags:       []string{"programming", "breakthrough", "achievement"},
				Emotion:    "focused",
				Intensity:  intensity(0.9),
				Bookmarked: true,
			},
		},
		{
			Age: days(20),
			Input: db.NoteInput{
				Title:     "Rainy Day Reflections",
				Body:      "The rain today matches my contemplative mood. Spent time reading and thinking about future goals. Sometimes quiet moments like these are exactly what the soul needs. Been reflecting on the past year and how much I've grown personally and professionally. The sound of rain is surprisingly therapeutic.",
				Tags:      []string{"reflection", "rain", "goals"},
				Emotion:   "calm",
				Intensity: intensity(0.5),
			},
		},
	}
}

func Tasks() []SampleTask {
	return []SampleTask{
		{
			Age:   days(3),
			DueIn: dueIn(2),
			Input: db.TaskInput{
				Title:       "Complete quarterly report",
				Description: "Finish the Q4 financial analysis and prepare presentation slides for the board meeting next week.",
				Priority:    "high",
				Status:      "in-progress",
				Category:    "work",
				Emotion:     "focused",
				Subtasks: []db.SubtaskInput{
					{Title: "Gather financial data", Completed: true},
					{Title: "Create charts and graphs", Completed: true},
					{Title: "Write executive summary"},
					{Title: "Prepare presentation"},
				},
			},
		},
		{
			Age:   days(1),
			DueIn: dueIn(5),
			Input: db.TaskInput{
				Title:       "Plan weekend hiking trip",
				Description: "Research trails, check weather, and pack gear for the mountain hiking adventure.",
				Priority:    "medium",
				Status:      "pending",
				Category:    "personal",
				Emotion:     "energized",
				Subtasks: []db.SubtaskInput{
					{Title: "Check weather forecast"},
					{Title: "Pack hiking gear"},
				},
			},
		},
		{
			Age:   days(0.2),
			DueIn: dueIn(0),
			Input: db.TaskInput{
				Title:       "Morning meditation practice",
				Description: "Daily 15-minute mindfulness meditation to start the day with clarity and focus.",
				Priority:    "low",
				Status:      "completed",
				Category:    "health",
				Emotion:     "calm",
			},
		},
		{
			Age:   days(2),
			DueIn: dueIn(7),
			Input: db.TaskInput{
				Title:       "Learn React Native basics",
				Description: "Complete the first three modules of the React Native course and build a simple mobile app.",
				Priority:    "medium",
				Status:      "pending",
				Category:    "learning",
				Emotion:     "creative",
				Subtasks: []db.SubtaskInput{
					{Title: "Set up development environment"},
					{Title: "Complete Module 1"},
					{Title: "Complete Module 2"},
				},
			},
		},
		{
			Age:   days(1),
			DueIn: dueIn(1),
			Input: db.TaskInput{
				Title:       "Call mom for birthday planning",
				Description: "Discuss plans for mom's surprise birthday party next month and coordinate with siblings.",
				Priority:    "high",
				Status:      "pending",
				Category:    "personal",
				Emotion:     "neutral",
			},
		},
		{
			Age:   days(3),
			DueIn: dueIn(3),
			Input: db.TaskInput{
				Title:       "Fix kitchen cabinet door",
				Description: "The cabinet door hinge is loose and needs to be tightened or replaced.",
				Priority:    "low",
				Status:      "pending",
				Category:    "home",
				Emotion:     "neutral",
			},
		},
		{
			Age:   days(5),
			DueIn: dueIn(-1),
			Input: db.TaskInput{
				Title:       "Review investment portfolio",
				Description: "Quarterly review of investment performance and rebalancing if needed.",
				Priority:    "medium",
				Status:      "pending",
				Category:    "finance",
				Emotion:     "stressed",
			},
		},
		{
			Age:   days(4),
			DueIn: dueIn(12),
			Input: db.TaskInput{
				Title:       "Write blog post about productivity",
				Description: "Share insights about emotional context in task management and productivity tips.",
				Priority:    "low",
				Status:      "in-progress",
				Category:    "creative",
				Emotion:     "creative",
				Subtasks: []db.SubtaskInput{
					{Title: "Research topic", Completed: true},
					{Title: "Create outline"},
					{Title: "Write first draft"},
				},
			},
		},
		{
			Age: days(6),
			Input: db.TaskInput{
				Title:       "Organize reading list",
				Description: "Sort saved articles and books into a reading queue for the next quarter.",
				Priority:    "low",
				Status:      "pending",
				Category:    "learning",
				Emotion:     "calm",
			},
		},
	}
}
