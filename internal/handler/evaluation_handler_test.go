package handler

import (
	"testing"

	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestScrubAnonymousFeedbackHidesStudentID(t *testing.T) {
	named := uuid.New()
	anonymous := uuid.New()
	items := []domain.StudentFeedback{
		{StudentID: named, FeedbackType: "program", IsAnonymous: false},
		{StudentID: anonymous, FeedbackType: "supervisor", IsAnonymous: true},
	}

	scrubAnonymousFeedback(items)

	assert.Equal(t, named, items[0].StudentID)
	assert.Equal(t, uuid.Nil, items[1].StudentID)
}
