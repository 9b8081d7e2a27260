// Package survey stores the background survey learners submit before a
// practice test; topic choices steer which question sets they receive.
package survey

import "time"

// Response is one submitted background survey.
type Response struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Occupation     string    `json:"occupation"`
	Residence      string    `json:"residence"`
	Topics         []string  `json:"topics"`
	SelfAssessment int       `json:"self_assessment"`
	CreatedAt      time.Time `json:"created_at"`
}

// Submission carries the writable survey fields.
type Submission struct {
	Occupation     string   `json:"occupation" validate:"required"`
	Residence      string   `json:"residence" validate:"required"`
	Topics         []string `json:"topics" validate:"required,min=1,max=20,dive,required"`
	SelfAssessment int      `json:"self_assessment" validate:"required,gte=1,lte=6"`
}
