package rule

import "strconv"

type NotRegistrableError string

func (e NotRegistrableError) Error() string {
	return "rules/rule: Rule " + string(e) + " not registrable"
}

type AlreadyRegisteredError string

func (e AlreadyRegisteredError) Error() string {
	return "rules/rule: Rule with type " + string(e) + " already registered"
}

type BadRuleConfigError int

func (e BadRuleConfigError) Error() string {
	return "rules/rule: Bad config for rule #" + strconv.Itoa(int(e))
}
