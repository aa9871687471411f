package naming

import "testing"

func TestSnake(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"GetObject", "get_object"},
		{"ListQueues", "list_queues"},
		{"GetObjectACL", "get_object_acl"},
		{"DBInstance", "db_instance"},
		{"DescribeDBInstances", "describe_db_instances"},
		{"PutObjectACLRequest", "put_object_acl_request"},
		{"Bucket", "bucket"},
		{"already_snake", "already_snake"},
		{"If-Match", "if_match"},
		{"x-amz-acl", "x_amz_acl"},
		{"S3Key", "s3_key"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Snake(tc.in); got != tc.want {
			t.Errorf("Snake(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExported(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"get_object", "GetObject"},
		{"GetObject", "GetObject"},
		{"my-tool", "MyTool"},
		{"if_match", "IfMatch"},
		{"bucket", "Bucket"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Exported(tc.in); got != tc.want {
			t.Errorf("Exported(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}
