package providers_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"

	"github.com/rarebird/peerscope/providers"
)

type IPAPIBatchTestSuite struct {
	MockedProviderTestSuite

	prov *providers.IPAPIBatch
}

func (suite *IPAPIBatchTestSuite) SetupTest() {
	suite.MockedProviderTestSuite.SetupTest()

	suite.prov = providers.NewIPAPIBatch(suite.http)
}

func (suite *IPAPIBatchTestSuite) TestName() {
	suite.Equal(providers.NameIPAPIBatch, suite.prov.Name())
}

func (suite *IPAPIBatchTestSuite) TestRejectsOversizedBatch() {
	addrs := make([]string, providers.IPAPIBatchCeiling+1)

	for i := range addrs {
		addrs[i] = fmt.Sprintf("10.0.0.%d", i)
	}

	_, err := suite.prov.BatchLookup(context.Background(), addrs)

	suite.Error(err)
	suite.Zero(httpmock.GetTotalCallCount())
}

func (suite *IPAPIBatchTestSuite) TestPartialSuccess() {
	httpmock.RegisterResponder("POST", "http://ip-api.com/batch",
		httpmock.NewStringResponder(200, `[
			{"status":"success","country":"Germany","city":"Berlin","lat":52.52,"lon":13.405,"query":"1.1.1.1"},
			{"status":"fail","message":"private range","query":"10.0.0.1"}
		]`))

	resolved, err := suite.prov.BatchLookup(context.Background(), []string{"1.1.1.1", "10.0.0.1"})

	suite.NoError(err)
	suite.Len(resolved, 1)
	suite.Equal("Berlin", resolved["1.1.1.1"].City)
	suite.NotContains(resolved, "10.0.0.1")
}

func (suite *IPAPIBatchTestSuite) TestBrokenJSON() {
	httpmock.RegisterResponder("POST", "http://ip-api.com/batch",
		httpmock.NewStringResponder(200, "{["))

	_, err := suite.prov.BatchLookup(context.Background(), []string{"1.1.1.1"})

	suite.Error(err)
}

func (suite *IPAPIBatchTestSuite) TestHTTPError() {
	httpmock.RegisterResponder("POST", "http://ip-api.com/batch",
		httpmock.NewStringResponder(429, ""))

	_, err := suite.prov.BatchLookup(context.Background(), []string{"1.1.1.1"})

	suite.Error(err)
}

func TestIPAPIBatch(t *testing.T) {
	suite.Run(t, &IPAPIBatchTestSuite{})
}
