package school

import "time"

// NewFromCreateRequest builds an unsaved school; the store assigns the ID.
func NewFromCreateRequest(req CreateSchoolRequest) School {
	now := time.Now().UTC()

	return School{
		Name:                         req.Name,
		Level:                        req.Level,
		Location:                     req.Location,
		StudentCount:                 req.StudentCount,
		StudentAgeRange:              req.StudentAgeRange,
		StudentPerformanceAvg:        req.StudentPerformanceAvg,
		MaleFemaleRatio:              req.MaleFemaleRatio,
		MaleFemaleDropoutRatio:       req.MaleFemaleDropoutRatio,
		TeacherCount:                 req.TeacherCount,
		TeacherPhDCount:              req.TeacherPhDCount,
		TeacherDegreeCount:           req.TeacherDegreeCount,
		TeacherDiplomaCount:          req.TeacherDiplomaCount,
		TeacherCertCount:             req.TeacherCertCount,
		TeacherExperience1To3Count:   req.TeacherExperience1To3Count,
		TeacherExperience4To6Count:   req.TeacherExperience4To6Count,
		TeacherExperience7To10Count:  req.TeacherExperience7To10Count,
		TeacherExperience10PlusCount: req.TeacherExperience10PlusCount,
		CreatedAt:                    now,
		UpdatedAt:                    now,
	}
}
