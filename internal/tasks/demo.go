package tasks

import (
	"time"

	"github.com/existflow/protodo/internal/model"
)

func day(s string) *time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DemoTasks returns the fixed sample list shown by the offline dashboard.
func DemoTasks() []model.Task {
	return []model.Task{
		{ID: "1", Title: "Plan project structure", Description: "Define components and pages for the TODO application",
			Priority: model.PriorityHigh, DueDate: day("2024-01-15")},
		{ID: "2", Title: "Design UI system", Description: "Create Tailwind tokens and design patterns",
			Priority: model.PriorityMedium, DueDate: day("2024-01-10"), Completed: true},
		{ID: "3", Title: "Implement authentication", Description: "Add login and signup functionality with form validation",
			Priority: model.PriorityHigh, DueDate: day("2024-01-20")},
		{ID: "4", Title: "Add animations", Description: "Implement smooth transitions and loading states",
			Priority: model.PriorityLow, DueDate: day("2024-01-25")},
	}
}
