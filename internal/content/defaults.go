package content

import (
	"strconv"

	"github.com/aanand-mishra/lamp-api/internal/types"
)

// Built-in content used when nothing usable is stored yet.

func defaultHero() types.HeroContent {
	return types.HeroContent{
		Badge:        "Admissions Open for 2025",
		Title:        "Illuminating Minds, Shaping Futures",
		Subtitle:     "Experience world-class education designed to empower the next generation of leaders, innovators, and thinkers.",
		CTAPrimary:   "Start Your Journey",
		CTASecondary: "View Programs",
		Image:        "/assets/generated_images/modern_bright_classroom_with_students.png",
	}
}

func defaultCourses() []types.Course {
	return []types.Course{
		{
			ID:       "1",
			Image:    "/assets/generated_images/coding_on_screen_close_up.png",
			Category: "Technology",
			Title:    "Full Stack Development",
			Duration: "12 Weeks",
			Students: "1.2k Students",
			Price:    "$999",
		},
		{
			ID:       "2",
			Image:    "/assets/generated_images/business_meeting_professional.png",
			Category: "Business",
			Title:    "Digital Marketing Mastery",
			Duration: "8 Weeks",
			Students: "850 Students",
			Price:    "$799",
		},
		{
			ID:       "3",
			Image:    "/assets/generated_images/creative_design_workspace.png",
			Category: "Design",
			Title:    "UI/UX Design Fundamentals",
			Duration: "10 Weeks",
			Students: "2k Students",
			Price:    "$899",
		},
	}
}

func defaultUniversities() []types.FormOption {
	return options(
		"Cairo University",
		"Ain Shams University",
		"Alexandria University",
		"Mansoura University",
		"Assiut University",
		"Helwan University",
		"Zagazig University",
		"Other",
	)
}

func defaultAvailableCourses() []types.FormOption {
	return options(
		"Full Stack Development",
		"Digital Marketing Mastery",
		"UI/UX Design Fundamentals",
		"Data Science Essentials",
		"Business Management",
	)
}

// options numbers labels from 1 and uses each label as its submitted value.
func options(labels ...string) []types.FormOption {
	out := make([]types.FormOption, 0, len(labels))
	for i, label := range labels {
		out = append(out, types.FormOption{
			ID:    strconv.Itoa(i + 1),
			Label: label,
			Value: label,
		})
	}
	return out
}
