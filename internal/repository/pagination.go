package repository

import "gorm.io/gorm"

// maxPageSize 单页上限，防止后台一次拉取全表
const maxPageSize = 100

// applyPagination 按页码切片；pageSize<=0 表示不分页
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
