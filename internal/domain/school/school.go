package school

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("school not found")
	ErrNameTaken = errors.New("school name already exists")
)

type School struct {
	ID                           int64     `json:"id"`
	Name                         string    `json:"name"`
	Level                        string    `json:"level"`
	Location                     string    `json:"location"`
	StudentCount                 int       `json:"student_count"`
	StudentAgeRange              string    `json:"student_age_range"`
	StudentPerformanceAvg        string    `json:"student_performance_avg"`
	MaleFemaleRatio              string    `json:"male_female_ratio"`
	MaleFemaleDropoutRatio       string    `json:"male_female_dropout_ratio"`
	TeacherCount                 int       `json:"teacher_count"`
	TeacherPhDCount              int       `json:"teacher_phd_count"`
	TeacherDegreeCount           int       `json:"teacher_degree_count"`
	TeacherDiplomaCount          int       `json:"teacher_diploma_count"`
	TeacherCertCount             int       `json:"teacher_cert_count"`
	TeacherExperience1To3Count   int       `json:"teacher_experience_1_3_count"`
	TeacherExperience4To6Count   int       `json:"teacher_experience_4_6_count"`
	TeacherExperience7To10Count  int       `json:"teacher_experience_7_10_count"`
	TeacherExperience10PlusCount int       `json:"teacher_experience_10_plus_count"`
	CreatedAt                    time.Time `json:"created_at"`
	UpdatedAt                    time.Time `json:"updated_at"`
}

type ListSchoolsFilter struct {
	Limit  int
	Offset int
}

type CreateSchoolRequest struct {
	Name                         string `json:"name" binding:"required,max=200"`
	Level                        string `json:"level" binding:"required,max=80"`
	Location                     string `json:"location" binding:"required,max=200"`
	StudentCount                 int    `json:"student_count" binding:"min=0"`
	StudentAgeRange              string `json:"student_age_range" binding:"required,max=40"`
	StudentPerformanceAvg        string `json:"student_performance_avg" binding:"required,max=40"`
	MaleFemaleRatio              string `json:"male_female_ratio" binding:"required,max=40"`
	MaleFemaleDropoutRatio       string `json:"male_female_dropout_ratio" binding:"required,max=40"`
	TeacherCount                 int    `json:"teacher_count" binding:"min=0"`
	TeacherPhDCount              int    `json:"teacher_phd_count" binding:"min=0"`
	TeacherDegreeCount           int    `json:"teacher_degree_count" binding:"min=0"`
	TeacherDiplomaCount          int    `json:"teacher_diploma_count" binding:"min=0"`
	TeacherCertCount             int    `json:"teacher_cert_count" binding:"min=0"`
	TeacherExperience1To3Count   int    `json:"teacher_experience_1_3_count" binding:"min=0"`
	TeacherExperience4To6Count   int    `json:"teacher_experience_4_6_count" binding:"min=0"`
	TeacherExperience7To10Count  int    `json:"teacher_experience_7_10_count" binding:"min=0"`
	TeacherExperience10PlusCount int    `json:"teacher_experience_10_plus_count" binding:"min=0"`
}

// Patch carries a partial update; nil fields keep their stored value.
type Patch struct {
	Name                         *string `json:"name" binding:"omitempty,min=1,max=200"`
	Level                        *string `json:"level" binding:"omitempty,min=1,max=80"`
	Location                     *string `json:"location" binding:"omitempty,min=1,max=200"`
	StudentCount                 *int    `json:"student_count" binding:"omitempty,min=0"`
	StudentAgeRange              *string `json:"student_age_range" binding:"omitempty,min=1,max=40"`
	StudentPerformanceAvg        *string `json:"student_performance_avg" binding:"omitempty,min=1,max=40"`
	MaleFemaleRatio              *string `json:"male_female_ratio" binding:"omitempty,min=1,max=40"`
	MaleFemaleDropoutRatio       *string `json:"male_female_dropout_ratio" binding:"omitempty,min=1,max=40"`
	TeacherCount                 *int    `json:"teacher_count" binding:"omitempty,min=0"`
	TeacherPhDCount              *int    `json:"teacher_phd_count" binding:"omitempty,min=0"`
	TeacherDegreeCount           *int    `json:"teacher_degree_count" binding:"omitempty,min=0"`
	TeacherDiplomaCount          *int    `json:"teacher_diploma_count" binding:"omitempty,min=0"`
	TeacherCertCount             *int    `json:"teacher_cert_count" binding:"omitempty,min=0"`
	TeacherExperience1To3Count   *int    `json:"teacher_experience_1_3_count" binding:"omitempty,min=0"`
	TeacherExperience4To6Count   *int    `json:"teacher_experience_4_6_count" binding:"omitempty,min=0"`
	TeacherExperience7To10Count  *int    `json:"teacher_experience_7_10_count" binding:"omitempty,min=0"`
	TeacherExperience10PlusCount *int    `json:"teacher_experience_10_plus_count" binding:"omitempty,min=0"`
}

// Empty reports whether the patch would leave every field as it is.
func (p Patch) Empty() bool {
	return p == Patch{}
}

func (p Patch) Apply(s *School) {
	setString(&s.Name, p.Name)
	setString(&s.Level, p.Level)
	setString(&s.Location, p.Location)
	setInt(&s.StudentCount, p.StudentCount)
	setString(&s.StudentAgeRange, p.StudentAgeRange)
	setString(&s.StudentPerformanceAvg, p.StudentPerformanceAvg)
	setString(&s.MaleFemaleRatio, p.MaleFemaleRatio)
	setString(&s.MaleFemaleDropoutRatio, p.MaleFemaleDropoutRatio)
	setInt(&s.TeacherCount, p.TeacherCount)
	setInt(&s.TeacherPhDCount, p.TeacherPhDCount)
	setInt(&s.TeacherDegreeCount, p.TeacherDegreeCount)
	setInt(&s.TeacherDiplomaCount, p.TeacherDiplomaCount)
	setInt(&s.TeacherCertCount, p.TeacherCertCount)
	setInt(&s.TeacherExperience1To3Count, p.TeacherExperience1To3Count)
	setInt(&s.TeacherExperience4To6Count, p.TeacherExperience4To6Count)
	setInt(&s.TeacherExperience7To10Count, p.TeacherExperience7To10Count)
	setInt(&s.TeacherExperience10PlusCount, p.TeacherExperience10PlusCount)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
