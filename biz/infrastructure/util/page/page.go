package page

import (
	"scorewise/biz/application/dto/basic"
	"scorewise/biz/infrastructure/consts"
)

// ParsePageOpt 解析分页参数
func ParsePageOpt(p *basic.PaginationOptions) (page int64, limit int64) {
	page = int64(1)
	limit = consts.PageSize

	if p != nil {
		if p.Page != nil {
			page = *p.Page
		}
		if p.Limit != nil {
			limit = *p.Limit
		}
	}
	return page, limit
}
