package broken

import "github.com/rawbytedev/unscrupulous"

type Good struct {
	unscrupulous.Plain
	N int64
}

type Bad struct {
	unscrupulous.Plain
	Name string
}

type Trailing struct {
	N int32
	unscrupulous.Plain
}
