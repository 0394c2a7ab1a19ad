package about_test

import (
	"testing"

	"portfolio/internal/domain/about"
)

func TestAboutInfo_Category(t *testing.T) {
	a := about.AboutInfo{
		Description:     "I build things.",
		SkillCategories: []about.Category{{Key: "cloud", Title: "Cloud", Tags: []string{"AWS"}}},
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if c, ok := a.Category("cloud"); !ok || c.Title != "Cloud" {
		t.Errorf("Category(cloud) = %+v, %v", c, ok)
	}
	if _, ok := a.Category("aiml"); ok {
		t.Error("Category(aiml) should be absent")
	}
	if err := (&about.AboutInfo{}).Validate(); err != about.ErrEmptyDescription {
		t.Errorf("empty Validate() = %v", err)
	}
}
