package utils

import "github.com/geocoder89/jobboard/internal/domain/job"

// Filter values go in verbatim: the store compares them case-sensitively.
func BuildJobsListCacheKey(jobType *job.Type, status *job.Status) string {
	t := ""
	if jobType != nil {
		t = string(*jobType)
	}
	s := ""
	if status != nil {
		s = string(*status)
	}

	return "jobs:list:v1:type=" + t + ":status=" + s
}
