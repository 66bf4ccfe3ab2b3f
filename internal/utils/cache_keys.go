package utils

import "strconv"

const SchoolsListCachePrefix = "schools:list:v1:"

func BuildSchoolsListCacheKey(skip, limit int) string {
	return SchoolsListCachePrefix + "skip=" + strconv.Itoa(skip) + ":limit=" + strconv.Itoa(limit)
}
