package features

import (
	_ "github.com/zhouchenh/rdapct/internal/config/rule"
	_ "github.com/zhouchenh/rdapct/internal/config/typed/rule"

	_ "github.com/zhouchenh/rdapct/internal/rules/casefolding"
	_ "github.com/zhouchenh/rdapct/internal/rules/declarative"
	_ "github.com/zhouchenh/rdapct/internal/rules/domaininvalid"
	_ "github.com/zhouchenh/rdapct/internal/rules/headstatus"
	_ "github.com/zhouchenh/rdapct/internal/rules/helpquery"
	_ "github.com/zhouchenh/rdapct/internal/rules/httpstatus"
	_ "github.com/zhouchenh/rdapct/internal/rules/ipaddresses"
	_ "github.com/zhouchenh/rdapct/internal/rules/objectclass"
	_ "github.com/zhouchenh/rdapct/internal/rules/queryfailure"
	_ "github.com/zhouchenh/rdapct/internal/rules/schemavalidation"
	_ "github.com/zhouchenh/rdapct/internal/rules/tlsversion"
)
